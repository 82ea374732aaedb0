package llm

import "context"

// Message is a single turn in a conversation passed to a Provider. The
// retriever only ever sends system/user roles; assistant messages appear
// when a provider echoes back the in-flight response for logging.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// StreamHandler receives incremental output from a streaming Chat call.
// Generation is text-only: no tool calls, no images, no thinking blocks.
type StreamHandler interface {
	OnDelta(content string)
}

// Provider is the collaborator contract for an LLM backend (§6.2). It is
// shared by the Generator (C8), the Relevance Gate (C10), and the Reranker
// (C5) when the reranker is backed by a scoring prompt instead of a local
// cross-encoder model.
type Provider interface {
	Chat(ctx context.Context, msgs []Message, model string, maxTokens int, temperature float64) (Message, error)
	ChatStream(ctx context.Context, msgs []Message, model string, maxTokens int, temperature float64, h StreamHandler) error
}
