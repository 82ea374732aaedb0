// Package trace implements the Trace Recorder (C9): it builds the fixed
// nine-span tree for a request, exports it as OpenTelemetry spans, fires a
// fan-out copy to Kafka for async ClickHouse ingestion, and answers
// feedback reads/writes against Postgres.
package trace

import (
	"sync"
	"time"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// Builder accumulates spans for a single request and produces the final
// domain.Trace. Start/AttachCandidates are safe to call concurrently so the
// pipeline can fan the dense and sparse retrieval spans out in parallel.
type Builder struct {
	mu        sync.Mutex
	traceID   string
	userID    string
	sessionID string
	question  string
	spans     []domain.Span
	open      map[domain.SpanName]int
}

func NewBuilder(traceID, userID, sessionID, question string) *Builder {
	return &Builder{traceID: traceID, userID: userID, sessionID: sessionID, question: question, open: map[domain.SpanName]int{}}
}

// Start opens a span and returns a function that closes it, recording
// output/err when called. Usage: defer b.Start(domain.SpanRerank, in)(out, err).
func (b *Builder) Start(name domain.SpanName, input map[string]any) func(output map[string]any, err error) {
	b.mu.Lock()
	span := domain.Span{Name: name, Start: time.Now(), Input: input}
	idx := len(b.spans)
	b.spans = append(b.spans, span)
	b.open[name] = idx
	b.mu.Unlock()
	return func(output map[string]any, err error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		s := &b.spans[idx]
		s.End = time.Now()
		s.Output = output
		if err != nil {
			s.Err = err.Error()
		}
	}
}

// AttachCandidates records the candidate set produced by a retrieval span
// for post-hoc debugging (spec §4.10's per-span candidate snapshot).
func (b *Builder) AttachCandidates(name domain.SpanName, candidates []domain.RetrievalResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.open[name]
	if !ok {
		return
	}
	b.spans[idx].Candidate = candidates
}

// Finish assembles the terminal Trace record.
func (b *Builder) Finish(status domain.Status, promptText string, tokensOut int, rerankFailed, refused bool) domain.Trace {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.Trace{
		TraceID:      b.traceID,
		UserID:       b.userID,
		SessionID:    b.sessionID,
		Question:     b.question,
		Spans:        b.spans,
		PromptText:   promptText,
		TokensOut:    tokensOut,
		Status:       status,
		RerankFailed: rerankFailed,
		Refused:      refused,
	}
}
