// Package gate implements the Relevance Gate (C10): a small-LLM classifier
// that decides whether the current question continues the prior
// conversation, to prevent context bleed from unrelated earlier turns.
package gate

import (
	"context"
	"strings"

	"cloudfuze.com/retriever/internal/llm"
)

const (
	maxOutputTokens = 50
	temperature     = 0
)

const systemPrompt = `You classify whether a user's new question is a follow-up to the prior conversation turn or an unrelated new topic. Respond with exactly one word: FOLLOWUP or NEW.`

// Decide classifies is_followup (spec §4.1). If conversationContext is
// empty, it returns NEW without calling the model (an empty context cannot
// be a follow-up to anything). On any classifier failure it fails open to
// FOLLOWUP: downstream tolerates extra context better than missing context.
func Decide(ctx context.Context, provider llm.Provider, model, question, conversationContext string) bool {
	if strings.TrimSpace(conversationContext) == "" {
		return false
	}

	msgs := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Prior conversation:\n" + conversationContext + "\n\nNew question: " + question},
	}

	resp, err := provider.Chat(ctx, msgs, model, maxOutputTokens, temperature)
	if err != nil {
		return true
	}
	return firstKeywordIsFollowup(resp.Content)
}

// firstKeywordIsFollowup finds the first occurrence of either keyword in
// the response and reports whether it was FOLLOWUP. Defaults to follow-up
// (fail open) if neither keyword appears.
func firstKeywordIsFollowup(text string) bool {
	upper := strings.ToUpper(text)
	fIdx := strings.Index(upper, "FOLLOWUP")
	nIdx := strings.Index(upper, "NEW")
	switch {
	case fIdx == -1 && nIdx == -1:
		return true
	case fIdx == -1:
		return false
	case nIdx == -1:
		return true
	default:
		return fIdx < nIdx
	}
}
