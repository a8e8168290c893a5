package models

import "time"

// Status is the learning state of a word for one user.
type Status string

const (
	StatusNew     Status = "new"
	StatusKnown   Status = "known"
	StatusUnknown Status = "unknown"
)

// Valid reports whether s is one of the three enumerated statuses.
func (s Status) Valid() bool {
	return s == StatusNew || s == StatusKnown || s == StatusUnknown
}

// Decidable reports whether s can be recorded as a review decision. Users
// decide "known" or "unknown"; "new" only ever arises from the absence of
// a progress row.
func (s Status) Decidable() bool {
	return s == StatusKnown || s == StatusUnknown
}

// ProgressRecord tracks a user's learning status for a specific word.
// At most one record exists per (user, word) pair; the absence of a record
// is read as StatusNew everywhere.
type ProgressRecord struct {
	UserID         string    `json:"user_id" db:"user_id"`
	WordID         string    `json:"word_id" db:"word_id"`
	Status         Status    `json:"status" db:"status"`
	LastReviewedAt time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
