package review

import (
	"context"
	"fmt"
	"time"

	"github.com/example/flashvocab/pkg/models"
)

// ProgressStore is the write side of per-user progress. Upsert creates the
// record for (userID, wordID) or overwrites its status and last-reviewed
// timestamp; implementations surface referential failures in a form
// recognized by their ReferenceChecker.
type ProgressStore interface {
	Upsert(ctx context.Context, userID, wordID string, status models.Status, reviewedAt time.Time) (*models.ProgressRecord, error)
}

// ReferenceChecker classifies a store error as a foreign-key violation.
// Kept separate from ProgressStore so fakes in tests don't have to care.
type ReferenceChecker func(error) bool

// Recorder applies review decisions to the progress store. It never retries:
// failures go back to the caller, who decides whether to re-submit.
type Recorder struct {
	progress   ProgressStore
	isRefError ReferenceChecker
	now        func() time.Time
}

// NewRecorder creates a recorder over the given progress store. isRefError
// may be nil when the store cannot produce referential failures. now may be
// nil to use wall-clock time.
func NewRecorder(progress ProgressStore, isRefError ReferenceChecker, now func() time.Time) *Recorder {
	if isRefError == nil {
		isRefError = func(error) bool { return false }
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{progress: progress, isRefError: isRefError, now: now}
}

// Record upserts the decision for (userID, wordID). Exactly one record for
// the pair exists after a successful call; repeated calls overwrite status
// and last-reviewed timestamp and are therefore last-write-wins.
func (r *Recorder) Record(ctx context.Context, userID, wordID string, decision models.Status) (*models.ProgressRecord, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if wordID == "" {
		return nil, fmt.Errorf("%w: empty word id", ErrInvalidReference)
	}
	if !decision.Decidable() {
		return nil, fmt.Errorf("%w: cannot record status %q", ErrWriteFailed, decision)
	}

	record, err := r.progress.Upsert(ctx, userID, wordID, decision, r.now())
	if err != nil {
		if r.isRefError(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidReference, wordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return record, nil
}
