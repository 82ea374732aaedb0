package observability

import (
    "context"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    "go.opentelemetry.io/otel/trace"
)

type requestCtxKey struct{}

// requestFields carries the retriever's own request identifiers — distinct
// from the OTel span's trace_id, which only exists once a span is started
// and is never the id returned to the caller in askResponse.trace_id.
type requestFields struct {
    traceID   string
    userID    string
    sessionID string
}

// WithRequestContext attaches the request's trace/user/session ids to ctx so
// every LoggerWithTrace call downstream (gate classification, generation,
// the Anthropic client) tags its log lines with the same id the caller sees
// in the response, without threading it through every function signature.
func WithRequestContext(ctx context.Context, traceID, userID, sessionID string) context.Context {
    return context.WithValue(ctx, requestCtxKey{}, requestFields{traceID: traceID, userID: userID, sessionID: sessionID})
}

// LoggerWithTrace returns a zerolog.Logger enriched with the request's
// trace_id/user_id/session_id (if set via WithRequestContext) and the OTel
// span's trace_id/span_id (if a span is active on the context).
func LoggerWithTrace(ctx context.Context) *zerolog.Logger {
    l := log.Logger
    if ctx == nil {
        return &l
    }
    if rf, ok := ctx.Value(requestCtxKey{}).(requestFields); ok {
        ctxLog := l.With()
        if rf.traceID != "" {
            ctxLog = ctxLog.Str("trace_id", rf.traceID)
        }
        if rf.userID != "" {
            ctxLog = ctxLog.Str("user_id", rf.userID)
        }
        if rf.sessionID != "" {
            ctxLog = ctxLog.Str("session_id", rf.sessionID)
        }
        l = ctxLog.Logger()
    }
    if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
        l = l.With().Str("otel_trace_id", sc.TraceID().String()).Logger()
        if sc.HasSpanID() {
            l = l.With().Str("span_id", sc.SpanID().String()).Logger()
        }
        if sc.IsSampled() {
            l = l.With().Bool("trace_sampled", true).Logger()
        }
    }
    return &l
}

