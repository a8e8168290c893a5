package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/flashvocab/pkg/models"
)

// StatisticsRepository handles read-side aggregate queries for the dashboard.
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Counts aggregates the user's progress rows. The "today" window is
// [dayStart, dayEnd); "this week" is the rolling window [weekStart, now].
func (r *StatisticsRepository) Counts(ctx context.Context, userID string, dayStart, dayEnd, weekStart time.Time) (*models.ProgressCounts, error) {
	var counts models.ProgressCounts
	query := r.db.Rebind(`
		SELECT
			COUNT(p.word_id) AS total,
			COALESCE(SUM(CASE WHEN p.status = 'new' THEN 1 ELSE 0 END), 0) AS new_count,
			COALESCE(SUM(CASE WHEN p.status = 'known' THEN 1 ELSE 0 END), 0) AS known_count,
			COALESCE(SUM(CASE WHEN p.status = 'unknown' THEN 1 ELSE 0 END), 0) AS unknown_count,
			COALESCE(SUM(CASE WHEN p.last_reviewed_at >= ? AND p.last_reviewed_at < ? THEN 1 ELSE 0 END), 0) AS today_count,
			COALESCE(SUM(CASE WHEN p.last_reviewed_at >= ? THEN 1 ELSE 0 END), 0) AS week_count,
			(SELECT COUNT(*) FROM words) AS words_total
		FROM progress p
		WHERE p.user_id = ?
	`)
	err := r.db.GetContext(ctx, &counts, query, dayStart.UTC(), dayEnd.UTC(), weekStart.UTC(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate progress: %v", err)
	}
	return &counts, nil
}

// ReviewTimes returns the user's last-reviewed timestamps at or after the
// given cutoff, for streak derivation.
func (r *StatisticsRepository) ReviewTimes(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	query := r.db.Rebind(`
		SELECT last_reviewed_at FROM progress
		WHERE user_id = ? AND last_reviewed_at >= ?
		ORDER BY last_reviewed_at ASC
	`)
	rows, err := r.db.QueryxContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get review times: %v", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan review time: %v", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read review times: %v", err)
	}
	return times, nil
}
