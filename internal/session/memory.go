package session

import (
	"context"
	"sync"
	"time"

	"github.com/copydesk/copydesk/internal/model"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Save stores a copy of sess and drops every session that has expired.
func (s *MemoryStore) Save(_ context.Context, sess *model.Session) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, stored := range s.sessions {
		if stored.IsExpiredAt(now) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = *sess
	return nil
}

// Load returns a copy of the session with the given ID.
func (s *MemoryStore) Load(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	if sess.IsExpiredAt(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}

// Delete removes the session if present.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
