package trace

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

// FeedbackStore persists the thumbs up/down attached to a trace. Writes are
// idempotent per (trace_id, user_id): a resubmission overwrites the prior
// rating rather than creating a duplicate (spec's Feedback contract).
type FeedbackStore struct {
	pool *pgxpool.Pool
}

func NewFeedbackStore(pool *pgxpool.Pool) *FeedbackStore {
	return &FeedbackStore{pool: pool}
}

func (s *FeedbackStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS trace_feedback (
    trace_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    rating TEXT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (trace_id, user_id)
);`)
	return err
}

func (s *FeedbackStore) Upsert(ctx context.Context, fb domain.Feedback) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO trace_feedback (trace_id, user_id, rating, comment, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (trace_id, user_id)
DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()`,
		fb.TraceID, fb.UserID, string(fb.Rating), fb.Comment)
	return err
}

func (s *FeedbackStore) Get(ctx context.Context, traceID, userID string) (*domain.Feedback, error) {
	row := s.pool.QueryRow(ctx, `
SELECT rating, comment FROM trace_feedback WHERE trace_id = $1 AND user_id = $2`, traceID, userID)
	var rating, comment string
	if err := row.Scan(&rating, &comment); err != nil {
		return nil, err
	}
	return &domain.Feedback{TraceID: traceID, UserID: userID, Rating: domain.Rating(rating), Comment: comment}, nil
}
