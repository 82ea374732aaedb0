// Package convo provides the conversation-history store consulted by the
// Relevance Gate (C10) and Query Preparer (C1): per-user, per-session
// append-only turns ordered by wall-clock arrival.
package convo

import (
	"context"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// Store is the conversation-history contract. GetContext returns up to
// maxPairs most recent user/assistant pairs for a session, oldest first.
type Store interface {
	GetContext(ctx context.Context, userID, sessionID string, maxPairs int) ([]domain.ConversationTurn, error)
	Append(ctx context.Context, userID, sessionID string, turn domain.ConversationTurn) error
}
