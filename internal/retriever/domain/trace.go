package domain

import "time"

// SpanName enumerates the fixed span tree children recorded by the Trace
// Recorder (C9) for every request (spec §4.10).
type SpanName string

const (
	SpanRelevanceGate   SpanName = "relevance_gate"
	SpanQueryPrepare    SpanName = "query_prepare"
	SpanDenseRetrieve   SpanName = "dense_retrieve"
	SpanSparseRetrieve  SpanName = "sparse_retrieve"
	SpanFuseBoost       SpanName = "fuse_boost"
	SpanRerank          SpanName = "rerank"
	SpanAssembleContext SpanName = "assemble_context"
	SpanCompilePrompt   SpanName = "compile_prompt"
	SpanGenerate        SpanName = "generate"
)

// Span is one node of the per-request span tree.
type Span struct {
	Name      SpanName
	Start     time.Time
	End       time.Time
	Input     map[string]any
	Output    map[string]any
	Err       string
	Candidate []RetrievalResult // populated for retrieval spans
}

// Status is the terminal disposition of a request's trace.
type Status string

const (
	StatusOK        Status = "ok"
	StatusRefused   Status = "refused"
	StatusCancelled Status = "cancelled"
	StatusErrored   Status = "errored"
)

// Trace is the full per-request observability record (spec §6 "observability"
// contract). Feedback is attached out-of-band via POST /feedback.
type Trace struct {
	TraceID      string
	UserID       string
	SessionID    string
	Question     string
	Spans        []Span
	PromptText   string
	TokensOut    int
	Status       Status
	RerankFailed bool
	Refused      bool
	Feedback     *Feedback
}

// Feedback is the thumbs up/down attached to a completed trace. Writes are
// idempotent per (TraceID, UserID): a later write overwrites the prior one.
type Feedback struct {
	TraceID string
	UserID  string
	Rating  Rating
	Comment string
}

type Rating string

const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)
