package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/flashvocab/pkg/models"
)

// Phase is the observable state of a review session.
type Phase string

const (
	// PhaseLoading means a word fetch is pending or in flight.
	PhaseLoading Phase = "loading"
	// PhaseHidden shows the term with the translation concealed.
	PhaseHidden Phase = "hidden"
	// PhaseRevealed shows the translation and awaits a decision.
	PhaseRevealed Phase = "revealed"
	// PhaseError holds a surfaced failure with a retry affordance.
	PhaseError Phase = "error"
)

// Snapshot is a point-in-time view of a session for rendering.
type Snapshot struct {
	Phase    Phase                  `json:"phase"`
	Word     *models.WordWithStatus `json:"word,omitempty"`
	Revealed bool                   `json:"revealed"`
	Busy     bool                   `json:"busy"`
	Error    string                 `json:"error,omitempty"`
}

// Session owns one client's review loop: the current word, the
// hidden/revealed flag, and the load word -> await decision -> record ->
// load next sequencing. Inputs arriving while a fetch or write is in
// flight are rejected with ErrSessionBusy rather than queued, and a
// decision write always completes before the next fetch is issued.
//
// An empty userID makes the session a guest session: decisions advance to
// the next word without ever touching the progress store.
type Session struct {
	selector *Selector
	recorder *Recorder
	userID   string

	mu       sync.Mutex
	phase    Phase
	word     *models.WordWithStatus
	revealed bool
	busy     bool
	lastErr  error
	// pending holds a decision whose write failed, so Retry can re-submit
	// it instead of abandoning the review.
	pending *models.Status
}

// NewSession creates a session in the loading phase. Call Start to fetch
// the first word.
func NewSession(selector *Selector, recorder *Recorder, userID string) *Session {
	return &Session{
		selector: selector,
		recorder: recorder,
		userID:   userID,
		phase:    PhaseLoading,
	}
}

// UserID returns the owning identity, or "" for a guest session.
func (s *Session) UserID() string { return s.userID }

// State returns a snapshot of the session for rendering.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Phase:    s.phase,
		Word:     s.word,
		Revealed: s.revealed,
		Busy:     s.busy,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// Start fetches the first word. Valid only once, from the initial loading
// phase.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	if s.phase != PhaseLoading {
		s.mu.Unlock()
		return fmt.Errorf("%w: session already started", ErrInvalidTransition)
	}
	s.busy = true
	s.mu.Unlock()

	return s.fetch(ctx)
}

// Reveal uncovers the translation. Valid only while a word is hidden; pure
// state, no store interaction.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrSessionBusy
	}
	if s.phase != PhaseHidden {
		return fmt.Errorf("%w: nothing to reveal in phase %q", ErrInvalidTransition, s.phase)
	}
	s.phase = PhaseRevealed
	s.revealed = true
	return nil
}

// Decide records the user's verdict on the revealed word and advances to
// the next one. For guests no write is issued; the session simply moves on.
// On a failed write the current word and its revealed state are preserved
// so the user keeps their context, and Retry re-submits the decision.
func (s *Session) Decide(ctx context.Context, decision models.Status) error {
	if !decision.Decidable() {
		return fmt.Errorf("%w: decision must be known or unknown", ErrInvalidTransition)
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	if s.phase != PhaseRevealed {
		s.mu.Unlock()
		return fmt.Errorf("%w: decide requires a revealed word", ErrInvalidTransition)
	}
	wordID := s.word.ID
	s.busy = true
	s.mu.Unlock()

	if s.userID != "" {
		if _, err := s.recorder.Record(ctx, s.userID, wordID, decision); err != nil {
			d := decision
			s.mu.Lock()
			s.busy = false
			s.phase = PhaseError
			s.lastErr = err
			s.pending = &d
			s.mu.Unlock()
			return err
		}
	}

	// The write has completed; only now may the next fetch go out.
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()
	return s.fetch(ctx)
}

// Skip advances to the next word without recording anything. Valid from
// both the hidden and revealed phases.
func (s *Session) Skip(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	if s.phase != PhaseHidden && s.phase != PhaseRevealed {
		s.mu.Unlock()
		return fmt.Errorf("%w: skip requires a displayed word", ErrInvalidTransition)
	}
	s.busy = true
	s.phase = PhaseLoading
	s.mu.Unlock()

	return s.fetch(ctx)
}

// Retry recovers from the error phase. After a failed decision write it
// re-submits that decision; after a failed fetch it fetches again.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	if s.phase != PhaseError {
		s.mu.Unlock()
		return fmt.Errorf("%w: nothing to retry in phase %q", ErrInvalidTransition, s.phase)
	}
	pending := s.pending
	var wordID string
	if s.word != nil {
		wordID = s.word.ID
	}
	s.busy = true
	s.mu.Unlock()

	if pending != nil && s.userID != "" && wordID != "" {
		if _, err := s.recorder.Record(ctx, s.userID, wordID, *pending); err != nil {
			s.mu.Lock()
			s.busy = false
			s.phase = PhaseError
			s.lastErr = err
			s.mu.Unlock()
			return err
		}
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()
	return s.fetch(ctx)
}

// fetch asks the selector for the next word. The caller must have set the
// busy flag; fetch clears it and settles the session into the hidden phase
// on success or the error phase on failure.
func (s *Session) fetch(ctx context.Context) error {
	word, err := s.selector.Next(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.phase = PhaseError
		s.lastErr = err
		s.word = nil
		s.revealed = false
		return err
	}
	s.phase = PhaseHidden
	s.word = word
	s.revealed = false
	s.lastErr = nil
	s.pending = nil
	return nil
}
