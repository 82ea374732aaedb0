package prepare

import (
	"testing"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"github.com/stretchr/testify/require"
)

func TestPrepareNotFollowupPassesThrough(t *testing.T) {
	turns := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "about metadata retention"},
		{Role: domain.RoleAssistant, Content: "we retain via sharepoint"},
	}
	got := Prepare("What about permissions?", turns, false)
	require.Equal(t, "What about permissions?", got)
}

func TestPrepareFollowupPrependsWindow(t *testing.T) {
	turns := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "about metadata retention"},
		{Role: domain.RoleAssistant, Content: "we retain via sharepoint"},
	}
	got := Prepare("What about permissions?", turns, true)
	require.Contains(t, got, "metadata retention")
	require.Contains(t, got, "User: What about permissions?")
}

func TestPrepareFollowupNoHistoryFallsBack(t *testing.T) {
	got := Prepare("Hi", nil, true)
	require.Equal(t, "Hi", got)
}

func TestDetectTermsS1(t *testing.T) {
	terms := DetectTerms("How does JSON export work in Slack to Teams migration?")
	byTerm := map[string]float64{}
	for _, d := range terms {
		byTerm[d.Term] = d.Weight
	}
	require.Contains(t, byTerm, "json")
	require.Contains(t, byTerm, "slack to teams")
	require.Contains(t, byTerm, "migration")
	for _, w := range byTerm {
		require.GreaterOrEqual(t, w, 2.0)
	}
	// "slack to teams" being matched as a trigram should consume those
	// tokens so "slack" and "teams" are not separately re-emitted.
	require.NotContains(t, byTerm, "slack")
	require.NotContains(t, byTerm, "teams")
}

func TestDetectTermsEmptyIsValid(t *testing.T) {
	require.Empty(t, DetectTerms("what is the capital of france"))
}

func TestDetectTermsLongestMatchWins(t *testing.T) {
	terms := DetectTerms("created by metadata is preserved")
	found := false
	for _, d := range terms {
		if d.Term == "created by metadata" {
			found = true
		}
		require.NotEqual(t, "created", d.Term)
	}
	require.True(t, found)
}
