package repository

import (
	"context"
	"sync"
	"time"

	"gitseek/internal/domain"
)

// OAuthState is the CSRF token issued when a login starts and verified when
// the callback returns.
type OAuthState struct {
	State     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// OAuthStateStore holds pending OAuth states between authorize redirect and
// callback. States are single-use.
type OAuthStateStore interface {
	Create(ctx context.Context, state *OAuthState) error
	// Consume validates and removes a state in one step. Unknown or expired
	// states yield an authentication error.
	Consume(ctx context.Context, state string) error
	DeleteExpired(ctx context.Context) error
}

// memoryOAuthStateStore provides an in-memory implementation of OAuthStateStore.
type memoryOAuthStateStore struct {
	states map[string]*OAuthState
	mutex  sync.Mutex
}

// NewMemoryOAuthStateStore creates a new in-memory OAuth state store.
func NewMemoryOAuthStateStore() OAuthStateStore {
	return &memoryOAuthStateStore{
		states: make(map[string]*OAuthState),
	}
}

// Create stores a pending OAuth state
func (s *memoryOAuthStateStore) Create(_ context.Context, state *OAuthState) error {
	if state.State == "" {
		return domain.NewValidationError("MISSING_STATE", "OAuth state is required", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.states[state.State] = state
	return nil
}

// Consume validates and removes a state in one step
func (s *memoryOAuthStateStore) Consume(_ context.Context, state string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, exists := s.states[state]
	if !exists {
		return domain.NewAuthenticationError("INVALID_STATE", "Unknown OAuth state")
	}

	delete(s.states, state)

	if time.Now().After(stored.ExpiresAt) {
		return domain.NewAuthenticationError("EXPIRED_STATE", "OAuth state has expired")
	}

	return nil
}

// DeleteExpired deletes all expired OAuth states
func (s *memoryOAuthStateStore) DeleteExpired(_ context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for key, state := range s.states {
		if state.ExpiresAt.Before(now) {
			delete(s.states, key)
		}
	}

	return nil
}
