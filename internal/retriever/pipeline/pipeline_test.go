package pipeline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"cloudfuze.com/retriever/internal/llm"
	"cloudfuze.com/retriever/internal/retriever/config"
	"cloudfuze.com/retriever/internal/retriever/convo"
	"cloudfuze.com/retriever/internal/retriever/dense"
	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/embed"
	"cloudfuze.com/retriever/internal/retriever/registry"
	"cloudfuze.com/retriever/internal/retriever/sparse"
)

type fakeVectorStore struct{ cands []dense.Candidate }

func (f *fakeVectorStore) SimilaritySearch(ctx context.Context, vector []float32, k int) ([]dense.Candidate, error) {
	if len(f.cands) > k && k > 0 {
		return f.cands[:k], nil
	}
	return f.cands, nil
}
func (f *fakeVectorStore) AddDocuments(ctx context.Context, chunks []domain.Chunk) error { return nil }
func (f *fakeVectorStore) Count(ctx context.Context) (int, error)                        { return len(f.cands), nil }

type fakeProvider struct{ reply string }

func (p *fakeProvider) Chat(ctx context.Context, msgs []llm.Message, model string, maxTokens int, temperature float64) (llm.Message, error) {
	return llm.Message{Role: "assistant", Content: p.reply}, nil
}
func (p *fakeProvider) ChatStream(ctx context.Context, msgs []llm.Message, model string, maxTokens int, temperature float64, h llm.StreamHandler) error {
	h.OnDelta(p.reply)
	return nil
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	idx := sparse.NewIndex()
	require.NoError(t, idx.Rebuild(context.Background(), []domain.Chunk{
		{ID: "c1", Text: "CloudFuze migrates Slack channel history to Microsoft Teams using JSON export.",
			Metadata: domain.Metadata{"source_type": "document", "file_name": "migration.pdf", "source_path": "/a"}},
	}))

	cfg := &config.Config{
		Retrieval: config.RetrievalConfig{
			DenseK: 10, SparseK: 10, FuseK: 10, FinalK: 5,
			ContextTokenBudget: 2000, AlphaDense: 0.7, BetaSparse: 0.3,
			LLMModel: "test-model", RequestDeadlineMS: 5000,
		},
	}

	reg := &registry.Registry{
		Config:   cfg,
		Embedder: embed.NewDeterministic(16),
		Vector:   &fakeVectorStore{},
		Sparse:   idx,
		LLM:      &fakeProvider{reply: "CloudFuze supports exporting Slack history to JSON."},
		Conv:     convo.NewMemoryStore(),
		Logger:   zerolog.Nop(),
	}
	return reg
}

func TestAskProducesStatusTokenAndDoneEvents(t *testing.T) {
	reg := testRegistry(t)
	var events []domain.StreamEvent
	tr := Ask(context.Background(), reg, Request{TraceID: "t1", UserID: "u1", SessionID: "s1", Question: "How do I migrate Slack to Teams?"},
		func(e domain.StreamEvent) { events = append(events, e) })

	require.NotEmpty(t, events)
	require.Equal(t, domain.EventStatus, events[0].Kind)
	require.Equal(t, domain.StatusAnalyzing, events[0].Tag)

	var sawDone bool
	for _, e := range events {
		if e.Kind == domain.EventDone {
			sawDone = true
			require.Equal(t, "t1", e.TraceID)
		}
	}
	require.True(t, sawDone)
	require.Equal(t, domain.StatusOK, tr.Status)
	require.NotEmpty(t, tr.Spans)
}

func TestAskMarksRefusedWhenNoCandidatesSurvive(t *testing.T) {
	reg := testRegistry(t)
	reg.Sparse = sparse.NewIndex() // empty index, no chunks at all
	reg.Vector = &fakeVectorStore{}

	var events []domain.StreamEvent
	tr := Ask(context.Background(), reg, Request{TraceID: "t2", UserID: "u1", SessionID: "s1", Question: "unrelated question"},
		func(e domain.StreamEvent) { events = append(events, e) })

	require.True(t, tr.Refused)
	require.Equal(t, domain.StatusRefused, tr.Status)
}

func TestAskAppendsQuestionToConversationStore(t *testing.T) {
	reg := testRegistry(t)
	Ask(context.Background(), reg, Request{TraceID: "t3", UserID: "u1", SessionID: "s1", Question: "hello"}, func(domain.StreamEvent) {})

	history, err := reg.Conv.GetContext(context.Background(), "u1", "s1", 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "hello", history[0].Content)
}
