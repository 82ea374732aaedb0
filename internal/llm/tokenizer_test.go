package llm

import "testing"

func TestEstimateTokensEmptyString(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
}

func TestEstimateTokensRoughlyCharsOverFour(t *testing.T) {
	s := "this is sixteen ch" // 18 runes
	got := EstimateTokens(s)
	want := len([]rune(s))/4 + 1
	if got != want {
		t.Fatalf("want %d, got %d", want, got)
	}
}

func TestEstimateTokensForMessagesSumsEachMessage(t *testing.T) {
	msgs := []Message{
		{Role: "system", Content: "abcd"},
		{Role: "user", Content: "abcdefgh"},
	}
	got := EstimateTokensForMessages(msgs)
	want := EstimateTokens(msgs[0].Content) + EstimateTokens(msgs[1].Content)
	if got != want {
		t.Fatalf("want %d, got %d", want, got)
	}
}
