// Package prepare implements the Query Preparer (C1): it forms the
// prepared_question used by retrieval and generation, and detects technical
// terms via static weighted n-gram dictionaries.
package prepare

import (
	"strings"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

const (
	maxConversationPairs = 5
	maxConversationChars = 1500
)

// Prepare builds the prepared_question. When isFollowup is true (the
// Relevance Gate's decision), a serialized window of the last K
// conversation pairs is prepended; otherwise the raw question passes
// through unchanged, guaranteeing S2/invariant-8 "follow-up isolation".
func Prepare(rawQuestion string, turns []domain.ConversationTurn, isFollowup bool) string {
	if !isFollowup || len(turns) == 0 {
		return rawQuestion
	}

	window := lastPairs(turns, maxConversationPairs, maxConversationChars)
	if window == "" {
		return rawQuestion
	}
	return window + "\nUser: " + rawQuestion
}

// lastPairs serializes up to maxPairs user/assistant pairs as
// "User: ...\nAssistant: ..." blocks separated by a blank line, most recent
// last. Oldest pairs are dropped until the blocks fit maxChars; the most
// recent pair is always kept, even when it alone exceeds the budget.
func lastPairs(turns []domain.ConversationTurn, maxPairs, maxChars int) string {
	type pair struct{ user, assistant string }
	var pairs []pair
	var cur pair
	have := false
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			if have {
				pairs = append(pairs, cur)
			}
			cur = pair{user: t.Content}
			have = true
		case domain.RoleAssistant:
			if have {
				cur.assistant = t.Content
			}
		}
	}
	if have {
		pairs = append(pairs, cur)
	}

	if len(pairs) > maxPairs {
		pairs = pairs[len(pairs)-maxPairs:]
	}

	var b strings.Builder
	total := 0
	var blocks []string
	for _, p := range pairs {
		block := "User: " + p.user
		if p.assistant != "" {
			block += "\nAssistant: " + p.assistant
		}
		blocks = append(blocks, block)
	}
	// Keep the most recent pairs within the character budget, dropping the
	// oldest first.
	start := 0
	for {
		total = 0
		for _, block := range blocks[start:] {
			total += len(block) + 1
		}
		if total <= maxChars || start == len(blocks)-1 || len(blocks) == 0 {
			break
		}
		start++
	}
	if len(blocks) == 0 {
		return ""
	}
	for i, block := range blocks[start:] {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
	}
	return b.String()
}
