package dense

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/embed"
)

const defaultTimeout = 5 * time.Second

// Retrieve embeds an expanded search string (prepared question plus the
// top-5 detected terms by weight) and issues a k-NN search. On timeout,
// embedding error or store error it returns a nil list together with the
// error; the caller records the failure on the dense_retrieve span and the
// pipeline continues with sparse-only candidates.
func Retrieve(ctx context.Context, embedder embed.Embedder, store VectorStore, preparedQuestion string, terms []domain.DetectedTerm, kDense int, timeout time.Duration) ([]Candidate, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	expanded := expand(preparedQuestion, terms)
	vec, err := embedder.Embed(ctx, expanded)
	if err != nil {
		return nil, err
	}
	return store.SimilaritySearch(ctx, vec, kDense)
}

// expand appends the top-5 detected terms by weight to the query string.
func expand(preparedQuestion string, terms []domain.DetectedTerm) string {
	if len(terms) == 0 {
		return preparedQuestion
	}
	sorted := make([]domain.DetectedTerm, len(terms))
	copy(sorted, terms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	words := make([]string, len(sorted))
	for i, t := range sorted {
		words[i] = t.Term
	}
	return preparedQuestion + " " + strings.Join(words, " ")
}
