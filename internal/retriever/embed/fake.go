package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// Deterministic is a network-free Embedder for tests: it hashes byte
// 3-grams of the input into a fixed-dimension vector via FNV-64a, the same
// construction the teacher's deterministicEmbedder used, so identical text
// always yields an identical vector and near-identical text yields nearby
// vectors — enough structure to exercise cosine similarity in tests without
// a real model.
type Deterministic struct {
	dim       int
	normalize bool
}

// NewDeterministic builds a fake embedder with the given dimension.
func NewDeterministic(dim int) *Deterministic {
	return &Deterministic{dim: dim, normalize: true}
}

func (d *Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	return d.vector(text), nil
}

func (d *Deterministic) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.vector(t)
	}
	return out, nil
}

func (d *Deterministic) Dimension() int { return d.dim }
func (d *Deterministic) Name() string   { return "deterministic-fake" }

func (d *Deterministic) vector(text string) []float32 {
	v := make([]float32, d.dim)
	if len(text) < 3 {
		add(v, 0, text)
		return d.finish(v)
	}
	for i := 0; i+3 <= len(text); i++ {
		add(v, i, text[i:i+3])
	}
	return d.finish(v)
}

func add(v []float32, seed int, gram string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(gram))
	sum := h.Sum64()
	idx := int(sum % uint64(len(v)))
	sign := float32(1)
	if (sum>>1)%2 == 0 {
		sign = -1
	}
	v[idx] += sign * (1 + float32(seed%7))
}

func (d *Deterministic) finish(v []float32) []float32 {
	if !d.normalize {
		return v
	}
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
	return v
}
