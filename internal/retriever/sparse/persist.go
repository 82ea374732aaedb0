package sparse

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

func init() {
	// Chunk metadata values are always one of these concrete types; gob
	// requires registering concrete types stored behind an `any` field.
	gob.Register("")
	gob.Register(false)
	gob.Register(float64(0))
	gob.Register(int(0))
}

// gobSnapshot mirrors snapshot but with exported, gob-friendly field names
// matching those already exported on doc/snapshot — kept as a distinct type
// so the on-disk format can evolve independently of the in-memory one.
type gobSnapshot struct {
	Docs      []doc
	DF        map[string]int
	AvgDocLen float64
	N         int
}

// Save persists the current snapshot to path using an atomic rename, so a
// reader never observes a partially written file (spec §6.4).
func (idx *Index) Save(path string) error {
	snap := idx.current.Load()
	gs := gobSnapshot{Docs: snap.Docs, DF: snap.DF, AvgDocLen: snap.AvgDocLen, N: snap.N}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gs); err != nil {
		return fmt.Errorf("encode sparse index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sparse index dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp sparse index file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write sparse index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close sparse index temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a previously saved snapshot from disk and installs it as the
// current one. Loading at startup avoids paying rebuild cost on every boot.
func (idx *Index) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sparse index: %w", err)
	}
	var gs gobSnapshot
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&gs); err != nil {
		return fmt.Errorf("decode sparse index: %w", err)
	}
	idx.current.Store(&snapshot{Docs: gs.Docs, DF: gs.DF, AvgDocLen: gs.AvgDocLen, N: gs.N})
	return nil
}
