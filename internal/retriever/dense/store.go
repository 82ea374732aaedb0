// Package dense implements the Dense Retriever (C2): it embeds the
// prepared query and issues a cosine k-NN search against the vector store.
package dense

import (
	"context"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// Candidate is one cosine-similarity hit from the vector store.
type Candidate struct {
	ChunkID  string
	Text     string
	Metadata domain.Metadata
	Score    float64 // cosine similarity, [-1, 1] or [0, 1] depending on store normalization
}

// VectorStore is the collaborator contract (spec §6.2). Implementations
// must use a fixed-parameter ANN index (e.g. HNSW M=48, efSearch=100) so
// that results are stable for identical inputs and store state.
type VectorStore interface {
	SimilaritySearch(ctx context.Context, vector []float32, k int) ([]Candidate, error)
	AddDocuments(ctx context.Context, chunks []domain.Chunk) error
	Count(ctx context.Context) (int, error)
}
