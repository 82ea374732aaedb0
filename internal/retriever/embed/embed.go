// Package embed provides the Embedding provider collaborator contract
// (spec §6.2: embed(text) -> vector[D]) plus an OpenAI-compatible backend
// and a deterministic fake for tests.
package embed

import "context"

// Embedder embeds text into a fixed-dimension vector space. Implementations
// must return vectors of a stable dimension for the lifetime of the process.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Name() string
}
