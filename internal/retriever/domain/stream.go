package domain

// StatusTag enumerates the progress markers emitted before token delivery
// begins on a streamed answer (spec §4.9).
type StatusTag string

const (
	StatusAnalyzing     StatusTag = "analyzing"
	StatusRetrieving    StatusTag = "retrieving"
	StatusReranking     StatusTag = "reranking"
	StatusReadingSource StatusTag = "reading_sources"
	StatusGenerating    StatusTag = "generating"
)

// EventKind tags the variant of a StreamEvent: Status | Token | Done | Error.
type EventKind string

const (
	EventStatus EventKind = "status"
	EventToken  EventKind = "token"
	EventDone   EventKind = "done"
	EventError  EventKind = "error"
)

// StreamEvent is the lazy sequence element produced by the Generator (C8)
// and serialized directly as an SSE event on /ask/stream.
type StreamEvent struct {
	Kind      EventKind
	Tag       StatusTag  // set when Kind == EventStatus
	Message   string     // set when Kind == EventStatus or EventError
	Token     string     // set when Kind == EventToken
	TraceID   string     // set when Kind == EventDone
	Citations []Citation // set when Kind == EventDone
	Refused   bool       // set when Kind == EventDone
}
