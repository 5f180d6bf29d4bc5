package session

import (
	"context"
	"sync"
	"time"

	"github.com/mx-space/portfolio/internal/models"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.UserSession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.UserSession), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, sess *models.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Revoke(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.RevokedAt = &at
	s.sessions[id] = sess
	return nil
}

// Prune drops expired sessions and reports how many were removed. The app
// runs it on a schedule so the map does not grow without bound.
func (s *MemoryStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
