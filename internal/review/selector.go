package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/flashvocab/pkg/models"
)

// VocabularyStore is the read side of the vocabulary the selector consults.
// Implementations report an empty vocabulary as sql.ErrNoRows.
type VocabularyStore interface {
	// Random returns one uniformly random entry (guest policy).
	Random(ctx context.Context) (*models.WordWithStatus, error)
	// Prioritized returns the highest-priority entry for the user:
	// new/unknown before known, least recently reviewed first.
	Prioritized(ctx context.Context, userID string) (*models.WordWithStatus, error)
}

// Selector picks the next word to display. Guests get a uniformly random
// entry; authenticated users get the priority ordering. Every call is a
// fresh read, nothing is cached between calls.
type Selector struct {
	vocabulary VocabularyStore
}

// NewSelector creates a selector over the given vocabulary.
func NewSelector(vocabulary VocabularyStore) *Selector {
	return &Selector{vocabulary: vocabulary}
}

// Next returns the next word for the caller. An empty userID means guest.
// For an authenticated user with a non-empty vocabulary the call never
// reports ErrNoWordsAvailable: when everything is known, a known entry
// comes back anyway so review never halts.
func (s *Selector) Next(ctx context.Context, userID string) (*models.WordWithStatus, error) {
	var (
		word *models.WordWithStatus
		err  error
	)
	if userID == "" {
		word, err = s.vocabulary.Random(ctx)
	} else {
		word, err = s.vocabulary.Prioritized(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoWordsAvailable
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return word, nil
}
