package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cloudfuze.com/retriever/internal/llm"
)

const scorerSystemPrompt = `You are a relevance scoring function. Given a question and a passage, respond with strict JSON: {"score": <float between 0 and 1>}. Higher means more relevant to answering the question. Output JSON only, no other text.`

// LLMScorer implements Scorer with a prompted LLM call, used when no
// dedicated local cross-encoder model is configured.
type LLMScorer struct {
	Provider llm.Provider
	Model    string
}

func (s *LLMScorer) Score(ctx context.Context, query string, passage string) (float64, error) {
	msgs := []llm.Message{
		{Role: "system", Content: scorerSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\nPassage:\n%s", query, passage)},
	}
	resp, err := s.Provider.Chat(ctx, msgs, s.Model, 50, 0)
	if err != nil {
		return 0, err
	}
	return parseScore(resp.Content)
}

// parseScore extracts a numeric score from a possibly fenced/garbage-
// wrapped LLM response, stripping markdown code fences and locating the
// first {...} span before falling back to a bare float.
func parseScore(text string) (float64, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			var payload struct {
				Score float64 `json:"score"`
			}
			if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil {
				return payload.Score, nil
			}
		}
	}

	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return 0, fmt.Errorf("rerank: could not parse score from response %q", text)
}
