// Package review implements the flashcard review core: word selection,
// progress recording, statistics aggregation, and the per-client session
// state machine. Storage and identity are injected collaborators; every
// store failure is converted to one of the sentinel errors below before it
// leaves this package.
package review

import "errors"

var (
	// ErrNoWordsAvailable means the vocabulary is empty. Recoverable by
	// loading content; sessions surface it as a retryable error state.
	ErrNoWordsAvailable = errors.New("no words available")

	// ErrInvalidReference means a decision referenced a word that does not
	// exist. A data-integrity defect, not user-recoverable.
	ErrInvalidReference = errors.New("word does not exist")

	// ErrReadFailed wraps transient store failures on the read path.
	ErrReadFailed = errors.New("failed to read from store")

	// ErrWriteFailed wraps transient store failures on the write path.
	ErrWriteFailed = errors.New("failed to write progress")

	// ErrUnauthorized means a progress write was attempted without an
	// authenticated identity.
	ErrUnauthorized = errors.New("authenticated identity required")

	// ErrSessionBusy rejects input that arrives while a fetch or write is
	// in flight. Inputs are discarded, never queued.
	ErrSessionBusy = errors.New("session is busy")

	// ErrInvalidTransition rejects input that is not valid in the session's
	// current phase, e.g. deciding before the translation is revealed.
	ErrInvalidTransition = errors.New("input not valid in current phase")
)
