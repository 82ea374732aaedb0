package convo

import (
	"context"
	"testing"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndGetContext(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, s.Append(ctx, "u1", "s1", domain.ConversationTurn{Role: role, Content: "turn", Timestamp: int64(i)}))
	}
	got, err := s.GetContext(ctx, "u1", "s1", 2)
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, int64(4), got[0].Timestamp)
}

func TestMemoryStoreIsolatesSessions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "u1", "s1", domain.ConversationTurn{Role: domain.RoleUser, Content: "a"}))
	require.NoError(t, s.Append(ctx, "u1", "s2", domain.ConversationTurn{Role: domain.RoleUser, Content: "b"}))
	got, err := s.GetContext(ctx, "u1", "s1", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].Content)
}

func TestMemoryStoreZeroMaxPairsReturnsEmpty(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.GetContext(context.Background(), "u1", "s1", 0)
	require.NoError(t, err)
	require.Empty(t, got)
}
