package repository

import (
	"context"
	"sync"
	"time"

	"gitseek/internal/domain"
)

// memorySessionStore provides an in-memory implementation of SessionStore.
type memorySessionStore struct {
	sessions map[string]*domain.Session // token -> session
	byUser   map[string]string          // user ID -> token
	mutex    sync.RWMutex
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*domain.Session),
		byUser:   make(map[string]string),
	}
}

// Create stores a new session, replacing any existing session for the same user
func (s *memorySessionStore) Create(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// One active session per login: drop the user's previous session
	if old, exists := s.byUser[session.User.ID]; exists {
		delete(s.sessions, old)
	}

	s.sessions[session.Token] = session
	s.byUser[session.User.ID] = session.Token

	return nil
}

// GetByToken retrieves a session by its token
func (s *memorySessionStore) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.getLocked(token)
	if err != nil {
		return nil, err
	}
	return copySession(session), nil
}

// Renew slides the session expiration forward from now by its lifetime
func (s *memorySessionStore) Renew(_ context.Context, token string, now time.Time) (*domain.Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.getLocked(token)
	if err != nil {
		return nil, err
	}

	session.Touch(now)
	return copySession(session), nil
}

// SetLifetime changes the session lifetime and recomputes its expiration
func (s *memorySessionStore) SetLifetime(
	_ context.Context, token string, lifetime time.Duration, now time.Time,
) (*domain.Session, error) {
	if lifetime <= 0 {
		return nil, domain.NewValidationError("INVALID_LIFETIME", "Session lifetime must be positive", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.getLocked(token)
	if err != nil {
		return nil, err
	}

	session.Lifetime = lifetime
	session.Touch(now)
	return copySession(session), nil
}

// DeleteByToken deletes a session by its token
func (s *memorySessionStore) DeleteByToken(_ context.Context, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if session, exists := s.sessions[token]; exists {
		s.removeLocked(session)
	}
	return nil
}

// DeleteExpired deletes all expired sessions
func (s *memorySessionStore) DeleteExpired(_ context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for _, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			s.removeLocked(session)
		}
	}

	return nil
}

// getLocked resolves a live session for mutation. Caller must hold the lock.
func (s *memorySessionStore) getLocked(token string) (*domain.Session, error) {
	session, exists := s.sessions[token]
	if !exists {
		return nil, domain.NewNotFoundError("SESSION_NOT_FOUND", "No session for token")
	}

	if session.IsExpired() {
		s.removeLocked(session)
		return nil, domain.NewNotFoundError("SESSION_EXPIRED", "Session has expired")
	}

	return session, nil
}

func (s *memorySessionStore) removeLocked(session *domain.Session) {
	delete(s.sessions, session.Token)
	if s.byUser[session.User.ID] == session.Token {
		delete(s.byUser, session.User.ID)
	}
}

// copySession returns a snapshot callers can hold outside the lock. The user
// value is an immutable identity, sharing it is fine.
func copySession(session *domain.Session) *domain.Session {
	out := *session
	return &out
}
