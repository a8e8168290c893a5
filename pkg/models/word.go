package models

import "time"

// Limits enforced when a word enters the vocabulary.
const (
	MaxTermLength        = 500
	MaxTranslationLength = 1000
)

// Word represents one vocabulary entry: a source-language term and its
// translation. Entries are immutable after creation; there is no update path.
type Word struct {
	ID          string    `json:"id" db:"id"`
	Term        string    `json:"term" db:"term"`
	Translation string    `json:"translation" db:"translation"`
	Example     string    `json:"example,omitempty" db:"example"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// WordWithStatus is a Word joined with the caller's progress. For words the
// user has never decided on there is no progress row; Status is StatusNew
// and LastReviewedAt is nil.
type WordWithStatus struct {
	Word
	Status         Status     `json:"status" db:"status"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
}
