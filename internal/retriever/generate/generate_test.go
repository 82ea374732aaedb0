package generate

import (
	"context"
	"errors"
	"testing"

	"cloudfuze.com/retriever/internal/llm"
	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/prompt"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	chunks []string
	err    error
}

func (f *fakeProvider) Chat(ctx context.Context, msgs []llm.Message, model string, maxTokens int, temperature float64) (llm.Message, error) {
	return llm.Message{}, nil
}

func (f *fakeProvider) ChatStream(ctx context.Context, msgs []llm.Message, model string, maxTokens int, temperature float64, h llm.StreamHandler) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		h.OnDelta(c)
	}
	return nil
}

func TestRunEmitsGeneratingThenTokensThenDone(t *testing.T) {
	var events []domain.StreamEvent
	p := &fakeProvider{chunks: []string{"Hello", " world"}}
	req := Request{
		Compiled:  prompt.Compile("ctx", "q"),
		TraceID:   "t1",
		Citations: []domain.Citation{{FileName: "a.pdf"}},
	}
	err := Run(context.Background(), p, "model", req, func(e domain.StreamEvent) { events = append(events, e) })
	require.NoError(t, err)
	require.Equal(t, domain.EventStatus, events[0].Kind)
	require.Equal(t, domain.StatusGenerating, events[0].Tag)
	require.Equal(t, domain.EventToken, events[1].Kind)
	require.Equal(t, "Hello", events[1].Token)
	last := events[len(events)-1]
	require.Equal(t, domain.EventDone, last.Kind)
	require.Equal(t, "t1", last.TraceID)
	require.Len(t, last.Citations, 1)
}

func TestRunMarksRefusedWhenContextWasEmpty(t *testing.T) {
	var events []domain.StreamEvent
	p := &fakeProvider{chunks: []string{"I can't help with that."}}
	req := Request{Compiled: prompt.Compile("", "q"), Refused: true}
	_ = Run(context.Background(), p, "model", req, func(e domain.StreamEvent) { events = append(events, e) })
	last := events[len(events)-1]
	require.True(t, last.Refused)
}

func TestRunEmitsErrorEventOnProviderFailure(t *testing.T) {
	var events []domain.StreamEvent
	p := &fakeProvider{err: errors.New("boom")}
	req := Request{Compiled: prompt.Compile("ctx", "q")}
	err := Run(context.Background(), p, "model", req, func(e domain.StreamEvent) { events = append(events, e) })
	require.Error(t, err)
	last := events[len(events)-1]
	require.Equal(t, domain.EventError, last.Kind)
}

func TestRunWithNilProviderEmitsError(t *testing.T) {
	var events []domain.StreamEvent
	err := Run(context.Background(), nil, "model", Request{}, func(e domain.StreamEvent) { events = append(events, e) })
	require.Error(t, err)
	require.Equal(t, domain.EventError, events[0].Kind)
}
