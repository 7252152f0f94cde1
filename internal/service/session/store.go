package session

import (
	"errors"
	"sync"

	"github.com/hostbr/deploybot/internal/domain"
)

// ErrNotFound is returned when no session exists for a user. Callers
// surface this as "session expired", never as a fatal failure.
var ErrNotFound = errors.New("deploy session not found")

// Store holds the in-flight deploy session per requesting user. State is
// intentionally volatile: it lives for the process lifetime only.
//
// Sessions for users who abandon the flow before payment are never
// evicted. Known gap, kept deliberately; see DESIGN.md.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.DeploySession
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*domain.DeploySession)}
}

// Put stores or replaces the session for a user.
func (s *Store) Put(userID string, sess *domain.DeploySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

// Get returns the session for a user, or ErrNotFound.
func (s *Store) Get(userID string) (*domain.DeploySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Remove drops the session for a user. Removing an absent session is a
// no-op.
func (s *Store) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
