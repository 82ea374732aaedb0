package convo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// PostgresStore persists conversation turns in Postgres, one append-only
// row per turn, grouped by (user_id, session_id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS conversation_turns (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS conversation_turns_session_idx
    ON conversation_turns(user_id, session_id, created_at);
`)
	return err
}

func (s *PostgresStore) GetContext(ctx context.Context, userID, sessionID string, maxPairs int) ([]domain.ConversationTurn, error) {
	if maxPairs <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
SELECT role, content, created_at FROM (
    SELECT role, content, created_at
    FROM conversation_turns
    WHERE user_id = $1 AND session_id = $2
    ORDER BY created_at DESC
    LIMIT $3
) recent
ORDER BY created_at ASC`, userID, sessionID, maxPairs*2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var role, content string
		var createdAt time.Time
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, err
		}
		turns = append(turns, domain.ConversationTurn{
			Role:      domain.Role(role),
			Content:   content,
			Timestamp: createdAt.Unix(),
		})
	}
	return turns, rows.Err()
}

func (s *PostgresStore) Append(ctx context.Context, userID, sessionID string, turn domain.ConversationTurn) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO conversation_turns (user_id, session_id, role, content)
VALUES ($1, $2, $3, $4)`, userID, sessionID, string(turn.Role), turn.Content)
	return err
}
