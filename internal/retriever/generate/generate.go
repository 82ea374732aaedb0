// Package generate implements the Generator (C8): it turns a compiled
// prompt into a sequence of domain.StreamEvent values, streaming tokens as
// they arrive from the LLM provider and closing with a done or error event.
package generate

import (
	"context"
	"errors"

	"cloudfuze.com/retriever/internal/llm"
	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/prompt"
)

// Temperature and MaxOutputTokens are fixed for answer generation (spec
// §4.9): deterministic-ish, grounded answers rather than creative ones.
const (
	Temperature     = 0.2
	MaxOutputTokens = 2000
)

// Request bundles what the Generator needs beyond the provider/model.
// Refused is computed upstream by the pipeline from context assembly
// (empty context means no chunks survived), not inferred from the model's
// own wording — the model still produces its own polite decline text, but
// Done.Refused is structural (spec §14 supplemented behavior).
type Request struct {
	Compiled  prompt.Compiled
	TraceID   string
	Citations []domain.Citation
	Refused   bool
}

// emitHandler adapts llm.StreamHandler's single OnDelta callback into
// domain.StreamEvent token events pushed onto the supplied sink.
type emitHandler struct {
	emit func(domain.StreamEvent)
}

func (h emitHandler) OnDelta(content string) {
	if content == "" {
		return
	}
	h.emit(domain.StreamEvent{Kind: domain.EventToken, Token: content})
}

// Run streams the answer. It emits a "generating" status event, then token
// events as they arrive, then exactly one terminal event (done or error).
// Cancellation of ctx propagates straight into the provider's streaming
// call; callers that need a hard stop should cancel ctx rather than
// abandoning the goroutine.
func Run(ctx context.Context, provider llm.Provider, model string, req Request, emit func(domain.StreamEvent)) error {
	if provider == nil {
		err := errors.New("generate: no provider configured")
		emit(domain.StreamEvent{Kind: domain.EventError, Message: err.Error()})
		return err
	}

	emit(domain.StreamEvent{Kind: domain.EventStatus, Tag: domain.StatusGenerating})

	msgs := []llm.Message{
		{Role: "system", Content: req.Compiled.SystemText},
		{Role: "user", Content: req.Compiled.UserText},
	}

	err := provider.ChatStream(ctx, msgs, model, MaxOutputTokens, Temperature, emitHandler{emit: emit})
	if err != nil {
		emit(domain.StreamEvent{Kind: domain.EventError, Message: err.Error(), TraceID: req.TraceID})
		return err
	}

	emit(domain.StreamEvent{
		Kind:      domain.EventDone,
		TraceID:   req.TraceID,
		Citations: req.Citations,
		Refused:   req.Refused,
	})
	return nil
}
