package rerank

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	scores map[string]float64
	err    error
	delay  time.Duration
}

func (f *fakeScorer) Score(ctx context.Context, _ string, passage string) (float64, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[passage], nil
}

func candidates() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{ChunkID: "a", Text: "a", FinalScore: 0.5},
		{ChunkID: "b", Text: "b", FinalScore: 0.9},
	}
}

func TestRerankOffReturnsFusedOrderCapped(t *testing.T) {
	res := Rerank(context.Background(), nil, Off, "q", candidates(), 1)
	require.Len(t, res.Candidates, 1)
	require.Equal(t, "a", res.Candidates[0].ChunkID)
	require.False(t, res.Failed)
}

func TestRerankOnReordersByBlend(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"a": 0.9, "b": 0.1}}
	res := Rerank(context.Background(), scorer, On, "q", candidates(), 2)
	require.False(t, res.Failed)
	require.Equal(t, "a", res.Candidates[0].ChunkID)
}

func TestRerankShadowDoesNotReorder(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"a": 0.9, "b": 0.1}}
	res := Rerank(context.Background(), scorer, Shadow, "q", candidates(), 2)
	require.False(t, res.Failed)
	require.Equal(t, "a", res.Candidates[0].ChunkID)
	require.Equal(t, "b", res.Candidates[1].ChunkID)
	require.NotNil(t, res.Candidates[0].RerankScore)
}

func TestRerankFailsOverToFusedOrderOnScorerError(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("boom")}
	res := Rerank(context.Background(), scorer, On, "q", candidates(), 2)
	require.True(t, res.Failed)
	require.Equal(t, "a", res.Candidates[0].ChunkID)
}

func TestParseScoreFromFencedJSON(t *testing.T) {
	s, err := parseScore("```json\n{\"score\": 0.73}\n```")
	require.NoError(t, err)
	require.Equal(t, 0.73, s)
}

func TestParseScoreFromBareFloat(t *testing.T) {
	s, err := parseScore("0.5")
	require.NoError(t, err)
	require.Equal(t, 0.5, s)
}
