package trace

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/rs/zerolog/log"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// Writer is the subset of *kafka.Writer the exporter needs, narrowed for
// testability.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// wireSpan and wireTrace are the JSON shapes published to Kafka; they are
// flattened and string-timestamped so the downstream ClickHouse sink
// (outside this module's scope) can ingest them without a schema registry.
type wireSpan struct {
	Name      string `json:"name"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
	Err       string `json:"err,omitempty"`
	Candidate int    `json:"candidate_count"`
}

type wireTrace struct {
	TraceID      string     `json:"trace_id"`
	UserID       string     `json:"user_id"`
	SessionID    string     `json:"session_id"`
	Question     string     `json:"question"`
	Status       string     `json:"status"`
	TokensOut    int        `json:"tokens_out"`
	RerankFailed bool       `json:"rerank_failed"`
	Refused      bool       `json:"refused"`
	Spans        []wireSpan `json:"spans"`
	RecordedAt   string     `json:"recorded_at"`
}

// Exporter fans finished traces out to Kafka. Publishing is fire-and-forget
// from the caller's perspective: a write failure is logged, never returned
// to the request path, because trace export must never slow or fail an
// answer (spec §4.10).
type Exporter struct {
	writer Writer
	topic  string
}

func NewExporter(writer Writer, topic string) *Exporter {
	return &Exporter{writer: writer, topic: topic}
}

func (e *Exporter) Publish(ctx context.Context, t domain.Trace) {
	if e == nil || e.writer == nil {
		return
	}
	payload, err := json.Marshal(toWire(t))
	if err != nil {
		log.Debug().Err(err).Str("trace_id", t.TraceID).Msg("trace_export_marshal_error")
		return
	}
	msg := kafka.Message{Topic: e.topic, Key: []byte(t.TraceID), Value: payload}
	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		log.Debug().Err(err).Str("trace_id", t.TraceID).Msg("trace_export_write_error")
	}
}

func toWire(t domain.Trace) wireTrace {
	spans := make([]wireSpan, 0, len(t.Spans))
	for _, s := range t.Spans {
		spans = append(spans, wireSpan{
			Name:      string(s.Name),
			StartedAt: s.Start.UTC().Format(time.RFC3339Nano),
			EndedAt:   s.End.UTC().Format(time.RFC3339Nano),
			Err:       s.Err,
			Candidate: len(s.Candidate),
		})
	}
	return wireTrace{
		TraceID:      t.TraceID,
		UserID:       t.UserID,
		SessionID:    t.SessionID,
		Question:     t.Question,
		Status:       string(t.Status),
		TokensOut:    t.TokensOut,
		RerankFailed: t.RerankFailed,
		Refused:      t.Refused,
		Spans:        spans,
		RecordedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}
