package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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

type fakeVectorStore struct{}

func (f *fakeVectorStore) SimilaritySearch(ctx context.Context, vector []float32, k int) ([]dense.Candidate, error) {
	return nil, nil
}
func (f *fakeVectorStore) AddDocuments(ctx context.Context, chunks []domain.Chunk) error { return nil }
func (f *fakeVectorStore) Count(ctx context.Context) (int, error)                        { return 0, nil }

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
		{ID: "c1", Text: "CloudFuze migrates Slack channel history to Microsoft Teams.",
			Metadata: domain.Metadata{"source_type": "document", "file_name": "migration.pdf", "source_path": "/a"}},
	}))

	cfg := &config.Config{
		Retrieval: config.RetrievalConfig{
			DenseK: 10, SparseK: 10, FuseK: 10, FinalK: 5,
			ContextTokenBudget: 2000, AlphaDense: 0.7, BetaSparse: 0.3,
			LLMModel: "test-model", RequestDeadlineMS: 5000,
		},
	}

	return &registry.Registry{
		Config:   cfg,
		Embedder: embed.NewDeterministic(16),
		Vector:   &fakeVectorStore{},
		Sparse:   idx,
		LLM:      &fakeProvider{reply: "CloudFuze supports Slack to Teams migration."},
		Conv:     convo.NewMemoryStore(),
		Logger:   zerolog.Nop(),
	}
}

func TestHealthzReturnsOK(t *testing.T) {
	mux := NewMux(testRegistry(t))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAskReturnsAnswerAndCitations(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(askRequest{Question: "How do I migrate Slack?", UserID: "u1", SessionID: "s1"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Answer)
	require.NotEmpty(t, resp.Citations)
	require.NotEmpty(t, resp.TraceID)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(askRequest{Question: "", UserID: "u1", SessionID: "s1"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskRejectsMissingAuthorization(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(askRequest{Question: "hello", UserID: "u1", SessionID: "s1"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAskRejectsMismatchedBearerSubject(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(askRequest{Question: "hello", UserID: "u1", SessionID: "s1"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer someone-else")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAskStreamEmitsStatusTokenAndDoneFrames(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(askRequest{Question: "How do I migrate Slack?", UserID: "u1", SessionID: "s1"})
	req := httptest.NewRequest(http.MethodPost, "/ask/stream", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	var sawStatus, sawToken, sawDone bool
	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: status"):
			sawStatus = true
		case strings.HasPrefix(line, "event: token"):
			sawToken = true
		case strings.HasPrefix(line, "event: done"):
			sawDone = true
		}
	}
	require.True(t, sawStatus)
	require.True(t, sawToken)
	require.True(t, sawDone)
}

func TestFeedbackReturns503WithoutFeedbackStore(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(feedbackRequest{TraceID: "t1", UserID: "u1", Rating: "up"})
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFeedbackRejectsMissingAuthorization(t *testing.T) {
	mux := NewMux(testRegistry(t))
	body, _ := json.Marshal(feedbackRequest{TraceID: "t1", UserID: "u1", Rating: "up"})
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
