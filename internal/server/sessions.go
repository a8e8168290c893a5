package server

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/example/flashvocab/internal/review"
)

// managedSession pairs a session with its idle deadline bookkeeping.
type managedSession struct {
	session    *review.Session
	lastActive time.Time
}

// SessionManager keeps live review sessions in memory, keyed by an opaque
// ID handed to the client. Sessions are transient state: an idle session
// past its TTL is dropped by a periodic purge job, and guest progress
// disappears with it.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*managedSession
	ttl      time.Duration
	now      func() time.Time

	scheduler *gocron.Scheduler
}

// NewSessionManager creates a manager dropping sessions idle longer than ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*managedSession),
		ttl:       ttl,
		now:       time.Now,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start begins the periodic purge of expired sessions.
func (m *SessionManager) Start() {
	m.scheduler.Every(1).Minute().Do(m.purgeExpired)
	m.scheduler.StartAsync()
}

// Stop terminates the purge job.
func (m *SessionManager) Stop() {
	m.scheduler.Stop()
}

// Put registers a session and returns its new ID.
func (m *SessionManager) Put(session *review.Session) string {
	id := uuid.NewString()
	m.PutWithID(id, session)
	return id
}

// PutWithID registers a session under a caller-chosen key, replacing any
// session already stored there. Used by surfaces with natural client keys,
// e.g. one session per Telegram chat.
func (m *SessionManager) PutWithID(id string, session *review.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &managedSession{session: session, lastActive: m.now()}
}

// Get returns the session for id and refreshes its idle deadline.
func (m *SessionManager) Get(id string) (*review.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	ms.lastActive = m.now()
	return ms.session, true
}

// Remove drops a session.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// purgeExpired drops sessions idle past the TTL.
func (m *SessionManager) purgeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.ttl)
	for id, ms := range m.sessions {
		if ms.lastActive.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
