// Package anthropic implements llm.Provider against the Anthropic Messages
// API. It carries only the text-in/text-out surface the retriever pipeline
// needs (relevance gate, cross-encoder reranker, answer generation) — no
// tool-calling, image, or extended-thinking machinery.
package anthropic

import (
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"cloudfuze.com/retriever/internal/llm"
	"cloudfuze.com/retriever/internal/observability"

	"context"
)

const defaultMaxTokens int64 = 1024

type Client struct {
	sdk   anthropic.Client
	model string
}

// New builds a Client. baseURL may be empty to use the Anthropic default.
func New(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(apiKey))}
	if base := strings.TrimSpace(baseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	return &Client{sdk: anthropic.NewClient(opts...), model: model}
}

func (c *Client) Chat(ctx context.Context, msgs []llm.Message, model string, maxTokens int, temperature float64) (llm.Message, error) {
	sys, converted := adaptMessages(msgs)
	params := buildParams(c.pickModel(model), sys, converted, maxTokens, temperature)

	ctx, span := llm.StartRequestSpan(ctx, "Anthropic Chat", string(params.Model), len(msgs))
	defer span.End()
	llm.LogRedactedPrompt(ctx, msgs)
	log := observability.LoggerWithTrace(ctx)

	start := time.Now()
	resp, err := c.sdk.Messages.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Str("model", string(params.Model)).Dur("duration", dur).Msg("anthropic_chat_error")
		return llm.Message{}, err
	}

	out := messageFromResponse(resp)
	prompt := int(resp.Usage.InputTokens)
	completion := int(resp.Usage.OutputTokens)
	llm.RecordTokenMetrics(string(params.Model), prompt, completion)
	llm.RecordTokenAttributes(span, prompt, completion, prompt+completion)
	llm.LogRedactedResponse(ctx, resp)
	return out, nil
}

func (c *Client) ChatStream(ctx context.Context, msgs []llm.Message, model string, maxTokens int, temperature float64, h llm.StreamHandler) error {
	sys, converted := adaptMessages(msgs)
	params := buildParams(c.pickModel(model), sys, converted, maxTokens, temperature)

	ctx, span := llm.StartRequestSpan(ctx, "Anthropic ChatStream", string(params.Model), len(msgs))
	defer span.End()
	llm.LogRedactedPrompt(ctx, msgs)
	log := observability.LoggerWithTrace(ctx)

	start := time.Now()
	stream := c.sdk.Messages.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	var acc anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			log.Debug().Err(err).Msg("anthropic_accumulate_error")
		}
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && h != nil && delta.Text != "" {
				h.OnDelta(delta.Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		span.RecordError(err)
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("anthropic_stream_error")
		return err
	}

	prompt := int(acc.Usage.InputTokens)
	completion := int(acc.Usage.OutputTokens)
	llm.RecordTokenMetrics(string(params.Model), prompt, completion)
	llm.RecordTokenAttributes(span, prompt, completion, prompt+completion)
	return nil
}

func buildParams(model string, sys []anthropic.TextBlockParam, messages []anthropic.MessageParam, maxTokens int, temperature float64) anthropic.MessageNewParams {
	mt := int64(maxTokens)
	if mt <= 0 {
		mt = defaultMaxTokens
	}
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		Messages:    messages,
		System:      sys,
		MaxTokens:   mt,
		Temperature: anthropic.Float(temperature),
	}
}

func (c *Client) pickModel(model string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return c.model
}

func adaptMessages(msgs []llm.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var sys []anthropic.TextBlockParam
	var out []anthropic.MessageParam
	for _, m := range msgs {
		switch m.Role {
		case "system":
			sys = append(sys, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return sys, out
}

func messageFromResponse(resp *anthropic.Message) llm.Message {
	var b strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	return llm.Message{Role: "assistant", Content: b.String()}
}
