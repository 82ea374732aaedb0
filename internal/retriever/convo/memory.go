package convo

import (
	"context"
	"sync"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// MemoryStore is an in-process Store used in tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	turns map[string][]domain.ConversationTurn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{turns: map[string][]domain.ConversationTurn{}}
}

func key(userID, sessionID string) string { return userID + "\x00" + sessionID }

func (m *MemoryStore) GetContext(ctx context.Context, userID, sessionID string, maxPairs int) ([]domain.ConversationTurn, error) {
	if maxPairs <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.turns[key(userID, sessionID)]
	limit := maxPairs * 2
	if len(all) <= limit {
		out := make([]domain.ConversationTurn, len(all))
		copy(out, all)
		return out, nil
	}
	out := make([]domain.ConversationTurn, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}

func (m *MemoryStore) Append(ctx context.Context, userID, sessionID string, turn domain.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userID, sessionID)
	m.turns[k] = append(m.turns[k], turn)
	return nil
}
