package trace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

const tracerName = "cloudfuze.com/retriever"

// ExportOTel replays a finished domain.Trace's span tree onto the process
// tracer provider so it reaches whatever OTLP backend InitOTel configured.
// Spans are emitted with their recorded start/end timestamps rather than
// "now" so exported durations match what the pipeline actually measured.
func ExportOTel(ctx context.Context, t domain.Trace) {
	tracer := otel.Tracer(tracerName)
	ctx, root := tracer.Start(ctx, "retrieval_request", oteltrace.WithTimestamp(firstStart(t.Spans)))
	root.SetAttributes(
		attribute.String("trace.id", t.TraceID),
		attribute.String("user.id", t.UserID),
		attribute.String("session.id", t.SessionID),
		attribute.String("retrieval.status", string(t.Status)),
		attribute.Bool("retrieval.rerank_failed", t.RerankFailed),
		attribute.Bool("retrieval.refused", t.Refused),
		attribute.Int("retrieval.tokens_out", t.TokensOut),
	)
	if t.Status == domain.StatusErrored {
		root.SetStatus(codes.Error, "request errored")
	}

	for _, s := range t.Spans {
		_, child := tracer.Start(ctx, string(s.Name), oteltrace.WithTimestamp(s.Start))
		child.SetAttributes(attribute.Int("span.candidate_count", len(s.Candidate)))
		if s.Err != "" {
			child.SetStatus(codes.Error, s.Err)
		}
		child.End(oteltrace.WithTimestamp(s.End))
	}
	root.End(oteltrace.WithTimestamp(lastEnd(t.Spans)))
}

func firstStart(spans []domain.Span) (zero time.Time) {
	for i, s := range spans {
		if i == 0 || s.Start.Before(zero) {
			zero = s.Start
		}
	}
	return zero
}

func lastEnd(spans []domain.Span) (zero time.Time) {
	for _, s := range spans {
		if s.End.After(zero) {
			zero = s.End
		}
	}
	return zero
}
