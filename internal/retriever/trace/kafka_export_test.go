package trace

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func TestPublishMarshalsTraceToWireFormat(t *testing.T) {
	w := &fakeWriter{}
	e := NewExporter(w, "traces")
	now := time.Now()
	tr := domain.Trace{
		TraceID: "t1",
		Status:  domain.StatusOK,
		Spans:   []domain.Span{{Name: domain.SpanGenerate, Start: now, End: now.Add(time.Second)}},
	}
	e.Publish(context.Background(), tr)
	require.Len(t, w.messages, 1)
	require.Equal(t, "t1", string(w.messages[0].Key))

	var decoded wireTrace
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	require.Equal(t, "t1", decoded.TraceID)
	require.Len(t, decoded.Spans, 1)
}

func TestPublishSwallowsWriterError(t *testing.T) {
	w := &fakeWriter{err: context.DeadlineExceeded}
	e := NewExporter(w, "traces")
	require.NotPanics(t, func() {
		e.Publish(context.Background(), domain.Trace{TraceID: "t1"})
	})
}

func TestPublishOnNilExporterIsNoop(t *testing.T) {
	var e *Exporter
	require.NotPanics(t, func() { e.Publish(context.Background(), domain.Trace{}) })
}
