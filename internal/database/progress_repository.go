package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/flashvocab/pkg/models"
)

// ProgressRepository handles database operations for per-user progress.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert creates the progress record for (userID, wordID) or overwrites its
// status and last-reviewed timestamp in place. created_at survives updates;
// the UNIQUE pair constraint guarantees at most one row ever exists.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, wordID string, status models.Status, reviewedAt time.Time) (*models.ProgressRecord, error) {
	query := r.db.Rebind(`
		INSERT INTO progress (user_id, word_id, status, last_reviewed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			status = excluded.status,
			last_reviewed_at = excluded.last_reviewed_at,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := r.db.ExecContext(ctx, query, userID, wordID, status, reviewedAt.UTC()); err != nil {
		return nil, err
	}
	return r.GetByUserAndWord(ctx, userID, wordID)
}

// GetByUserAndWord returns progress for a specific user and word, or
// sql.ErrNoRows when the user has never decided on it.
func (r *ProgressRepository) GetByUserAndWord(ctx context.Context, userID, wordID string) (*models.ProgressRecord, error) {
	var record models.ProgressRecord
	query := r.db.Rebind("SELECT * FROM progress WHERE user_id = ? AND word_id = ?")
	if err := r.db.GetContext(ctx, &record, query, userID, wordID); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAllByUser returns all progress records for a user.
func (r *ProgressRepository) GetAllByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	query := r.db.Rebind("SELECT * FROM progress WHERE user_id = ? ORDER BY last_reviewed_at DESC")
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user progress: %v", err)
	}
	return records, nil
}
