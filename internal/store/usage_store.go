package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/agencydash/internal/model"
	"github.com/jjenkins/agencydash/internal/quota"
)

// UsageStore persists daily reveal counts. Updates lock the user's row for
// the duration of the read-modify-write.
type UsageStore struct {
	db *sql.DB
}

var _ quota.Store = (*UsageStore)(nil)

// NewUsageStore creates a new UsageStore
func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

// Update creates the user's row if needed, locks it, applies fn and writes
// the result back when fn reports a change.
func (s *UsageStore) Update(ctx context.Context, userID string, now time.Time, fn quota.UpdateFunc) (model.UsageRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_usage (user_id, count, last_viewed_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, now)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("failed to create usage for %s: %w", userID, err)
	}

	rec := model.UsageRecord{UserID: userID}
	err = tx.QueryRowContext(ctx, `
		SELECT count, last_viewed_at
		FROM user_usage
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&rec.Count, &rec.LastViewedAt)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("failed to lock usage for %s: %w", userID, err)
	}

	if fn(&rec) {
		_, err = tx.ExecContext(ctx, `
			UPDATE user_usage
			SET count = $2, last_viewed_at = $3
			WHERE user_id = $1
		`, userID, rec.Count, rec.LastViewedAt)
		if err != nil {
			return model.UsageRecord{}, fmt.Errorf("failed to update usage for %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.UsageRecord{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rec, nil
}

// Get retrieves the user's usage record
func (s *UsageStore) Get(ctx context.Context, userID string) (*model.UsageRecord, error) {
	rec := model.UsageRecord{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT count, last_viewed_at FROM user_usage WHERE user_id = $1
	`, userID).Scan(&rec.Count, &rec.LastViewedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage for %s: %w", userID, err)
	}

	return &rec, nil
}

// RevealsSince sums reveals recorded by users active since the given instant
func (s *UsageStore) RevealsSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(count), 0) FROM user_usage WHERE last_viewed_at >= $1
	`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reveals: %w", err)
	}
	return total, nil
}
