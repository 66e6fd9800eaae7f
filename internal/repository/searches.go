package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/tickerlens/internal/model"
)

const searchesSchema = `
	CREATE TABLE IF NOT EXISTS searches (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL DEFAULT '',
		kind       TEXT NOT NULL,
		tickers    TEXT[] NOT NULL,
		succeeded  BOOLEAN NOT NULL,
		errors     JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS searches_user_created_idx ON searches (user_id, created_at DESC);
`

// SearchRepo persists lookups and comparisons for the history view.
type SearchRepo struct {
	pool *pgxpool.Pool
}

func NewSearchRepo(pool *pgxpool.Pool) *SearchRepo {
	return &SearchRepo{pool: pool}
}

// EnsureSchema creates the searches table if it is missing.
func (r *SearchRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, searchesSchema); err != nil {
		return fmt.Errorf("creating searches schema: %w", err)
	}
	return nil
}

// Record inserts s, filling in ID and CreatedAt.
func (r *SearchRepo) Record(ctx context.Context, s *model.SearchRecord) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO searches (id, user_id, kind, tickers, succeeded, errors)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.UserID, s.Kind, s.Tickers, s.Succeeded, s.Errors).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// Recent returns the user's latest searches, newest first.
func (r *SearchRepo) Recent(ctx context.Context, userID string, limit int) ([]model.SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, kind, tickers, succeeded, errors, created_at
		FROM searches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	var out []model.SearchRecord
	for rows.Next() {
		var s model.SearchRecord
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.Tickers, &s.Succeeded, &s.Errors, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating searches: %w", err)
	}
	return out, nil
}

// DeleteForUser clears a user's history and returns how many rows went.
func (r *SearchRepo) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM searches WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting searches: %w", err)
	}
	return tag.RowsAffected(), nil
}
