package assembler

import "cloudfuze.com/retriever/internal/llm"

// HeuristicTokenizer wraps llm.EstimateTokens (chars/4), the corpus's only
// tokenization heuristic. There is no tiktoken-equivalent local tokenizer
// library anywhere in the pack, and calling the provider's network
// tokenizer per chunk during budget-walking would make every assembly pay
// a round trip per candidate; the heuristic is the documented tradeoff
// (see DESIGN.md).
type HeuristicTokenizer struct{}

func (HeuristicTokenizer) Count(text string) int {
	return llm.EstimateTokens(text)
}
