package dense

import (
	"context"
	"testing"
	"time"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/embed"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	lastVector []float32
	results    []Candidate
	err        error
}

func (f *fakeStore) SimilaritySearch(_ context.Context, vector []float32, k int) ([]Candidate, error) {
	f.lastVector = vector
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}
func (f *fakeStore) AddDocuments(context.Context, []domain.Chunk) error { return nil }
func (f *fakeStore) Count(context.Context) (int, error)                { return len(f.results), nil }

func TestRetrieveExpandsQueryWithTopTerms(t *testing.T) {
	store := &fakeStore{results: []Candidate{{ChunkID: "c1", Score: 0.9}}}
	e := embed.NewDeterministic(16)
	terms := []domain.DetectedTerm{
		{Term: "json", Weight: 2.6}, {Term: "slack", Weight: 3.2},
	}
	got, err := Retrieve(context.Background(), e, store, "how does export work", terms, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, store.lastVector)
}

func TestRetrieveReturnsErrorOnStoreFailure(t *testing.T) {
	store := &fakeStore{err: context.DeadlineExceeded}
	e := embed.NewDeterministic(16)
	_, err := Retrieve(context.Background(), e, store, "q", nil, 10, time.Second)
	require.Error(t, err)
}

func TestExpandOrdersByWeightDescendingAndCapsAtFive(t *testing.T) {
	terms := []domain.DetectedTerm{
		{Term: "a", Weight: 2.0}, {Term: "b", Weight: 3.5}, {Term: "c", Weight: 2.5},
		{Term: "d", Weight: 2.1}, {Term: "e", Weight: 2.9}, {Term: "f", Weight: 2.2},
	}
	got := expand("q", terms)
	require.Equal(t, "q b e c f d", got)
}
