package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"cloudfuze.com/retriever/internal/retriever/config"
	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/registry"
	"cloudfuze.com/retriever/internal/retriever/sparse"
)

func zeroLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "rebuild-index":
		rebuildIndex(os.Args[2:])
	case "health":
		health(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	log.Fatal("usage: retrieverctl <rebuild-index|health> [flags]")
}

type chunkLine struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Metadata domain.Metadata `json:"metadata"`
}

// rebuildIndex reads newline-delimited chunk JSON from -corpus (or STDIN)
// and writes a fresh BM25 index to -out, mirroring how an ingestion batch
// job refreshes the sparse side offline. retrieverd reads the index from
// SPARSE_INDEX_PATH only at startup, so a running server picks up a rebuilt
// index when it is restarted.
func rebuildIndex(args []string) {
	fs := flag.NewFlagSet("rebuild-index", flag.ExitOnError)
	corpusPath := fs.String("corpus", "", "path to newline-delimited chunk JSON (default: STDIN)")
	outPath := fs.String("out", "./data/sparse-index", "output path for the persisted index")
	fs.Parse(args)

	var r *os.File
	if *corpusPath == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(*corpusPath)
		if err != nil {
			log.Fatalf("open corpus: %v", err)
		}
		defer f.Close()
		r = f
	}

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var cl chunkLine
		if err := json.Unmarshal(line, &cl); err != nil {
			log.Fatalf("parse chunk line: %v", err)
		}
		chunks = append(chunks, domain.Chunk{ID: cl.ID, Text: cl.Text, Metadata: cl.Metadata})
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read corpus: %v", err)
	}

	idx := sparse.NewIndex()
	ctx := context.Background()
	if err := idx.Rebuild(ctx, chunks); err != nil {
		log.Fatalf("rebuild index: %v", err)
	}
	if err := idx.Save(*outPath); err != nil {
		log.Fatalf("save index: %v", err)
	}
	fmt.Printf("rebuilt sparse index: %d chunks -> %s\n", len(chunks), *outPath)
}

// health constructs a Registry from the process config and reports which
// optional backends (vector store, cache, trace export, feedback) came up,
// without serving any traffic.
func health(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reg, err := registry.New(ctx, cfg, zeroLogger())
	if err != nil {
		log.Fatalf("build registry: %v", err)
	}
	defer reg.Close()

	report := map[string]bool{
		"llm":            reg.LLM != nil,
		"embedder":       reg.Embedder != nil,
		"vector_store":   reg.Vector != nil,
		"sparse_index":   reg.Sparse != nil,
		"cache":          reg.Cache != nil,
		"trace_export":   reg.Trace != nil,
		"feedback_store": reg.Feedback != nil,
	}
	b, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(b))
}
