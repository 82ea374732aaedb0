// Package sparse implements the Sparse Retriever (C3): BM25 scoring over
// tokenized chunk text and metadata, gob-persisted to disk with an atomic
// swap pointer so a query never observes a half-rebuilt index.
package sparse

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

const (
	k1 = 1.2
	b  = 0.75
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// Candidate is one BM25 hit.
type Candidate struct {
	ChunkID string
	Score   float64
}

// doc is a single indexed document: its term frequencies plus everything
// needed to recompute BM25 against a query at search time.
type doc struct {
	ChunkID  string
	Text     string
	Metadata domain.Metadata
	Terms    map[string]int
	Length   int
}

// snapshot is the immutable, queryable state of the index at a point in
// time. Rebuild produces a new snapshot and the index swaps a pointer to
// it; in-flight queries keep using the snapshot they started with.
type snapshot struct {
	Docs       []doc
	DF         map[string]int // document frequency per term
	AvgDocLen  float64
	N          int
}

// Index is the collaborator contract implementation: query/rebuild/save/load.
type Index struct {
	current atomic.Pointer[snapshot]
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	idx := &Index{}
	idx.current.Store(&snapshot{DF: map[string]int{}})
	return idx
}

// tokenize turns chunk text and metadata (file_name split on non-alphanumerics,
// folder_path components) into an indexable bag of words, per spec §4.4.
func tokenize(text string, md domain.Metadata) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if md != nil {
		tokens = append(tokens, wordPattern.FindAllString(strings.ToLower(md.FileName()), -1)...)
		tokens = append(tokens, wordPattern.FindAllString(strings.ToLower(md.FolderPath()), -1)...)
	}
	return tokens
}

// Rebuild computes a fresh snapshot from the given chunks and atomically
// swaps it in. Existing queries against the prior snapshot are unaffected.
func (idx *Index) Rebuild(_ context.Context, chunks []domain.Chunk) error {
	df := map[string]int{}
	docs := make([]doc, 0, len(chunks))
	var totalLen int

	for _, c := range chunks {
		tokens := tokenize(c.Text, c.Metadata)
		tf := map[string]int{}
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			df[t]++
		}
		docs = append(docs, doc{
			ChunkID:  c.ID,
			Text:     c.Text,
			Metadata: c.Metadata,
			Terms:    tf,
			Length:   len(tokens),
		})
		totalLen += len(tokens)
	}

	avg := 0.0
	if len(docs) > 0 {
		avg = float64(totalLen) / float64(len(docs))
	}

	idx.current.Store(&snapshot{Docs: docs, DF: df, AvgDocLen: avg, N: len(docs)})
	return nil
}

// Query scores the tokenized query against the current snapshot and
// returns the top-k by BM25 score (spec §4.4). IDF is not precomputed: each
// query term's IDF is computed at query time from the document frequencies
// stored in the snapshot at Rebuild time.
func (idx *Index) Query(_ context.Context, queryTokens []string, k int) ([]Candidate, error) {
	snap := idx.current.Load()
	if snap == nil || snap.N == 0 {
		return nil, nil
	}

	qtf := map[string]int{}
	for _, t := range queryTokens {
		qtf[t]++
	}

	scored := make([]Candidate, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		var score float64
		for term := range qtf {
			tf, ok := d.Terms[term]
			if !ok {
				continue
			}
			idf := idfOf(snap, term)
			denom := float64(tf) + k1*(1-b+b*float64(d.Length)/snap.AvgDocLen)
			score += idf * (float64(tf) * (k1 + 1)) / denom
		}
		if score > 0 {
			scored = append(scored, Candidate{ChunkID: d.ChunkID, Score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// idfOf computes the classic BM25 IDF: ln(1 + (N - df + 0.5)/(df + 0.5)).
func idfOf(snap *snapshot, term string) float64 {
	df := snap.DF[term]
	if df == 0 {
		return 0
	}
	return math.Log(1 + (float64(snap.N)-float64(df)+0.5)/(float64(df)+0.5))
}

// QueryText tokenizes and queries text directly — the convenience entry
// point C3 uses against the prepared question.
func (idx *Index) QueryText(ctx context.Context, preparedQuestion string, k int) ([]Candidate, error) {
	return idx.Query(ctx, wordPattern.FindAllString(strings.ToLower(preparedQuestion), -1), k)
}

// DocByID returns the stored text/metadata for a chunk id, used by the
// fusion stage to hydrate candidates that only came from the sparse side.
func (idx *Index) DocByID(chunkID string) (string, domain.Metadata, bool) {
	snap := idx.current.Load()
	for _, d := range snap.Docs {
		if d.ChunkID == chunkID {
			return d.Text, d.Metadata, true
		}
	}
	return "", nil, false
}
