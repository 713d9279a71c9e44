package store

import (
	"context"
	"sync"
	"time"

	"checkout/internal/checkout/models"
	"checkout/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process memory. Expired sessions are
// invisible to Find and removed by DeleteExpired.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[models.SessionID]*models.Session
	now      Clock
}

type MemoryOption func(*InMemoryStore)

// WithClock overrides the clock used for expiry checks.
func WithClock(now Clock) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[models.SessionID]*models.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts or replaces the session.
func (s *InMemoryStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// Find returns a copy of the session.
func (s *InMemoryStore) Find(_ context.Context, id models.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || session.IsExpired(s.now()) {
		return nil, sentinel.ErrNotFound
	}
	return cloneSession(session), nil
}

// Delete removes the session. Expired sessions are removed too but report
// ErrNotFound, as Find does.
func (s *InMemoryStore) Delete(_ context.Context, id models.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	if session.IsExpired(s.now()) {
		return sentinel.ErrNotFound
	}
	return nil
}

// DeleteExpired drops every session expired at now and reports how many
// were removed.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of sessions held, including expired ones not yet swept.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
