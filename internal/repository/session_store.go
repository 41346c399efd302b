// Package repository provides in-memory data stores behind small interfaces
// so call sites never touch process-wide maps directly. Every store here is
// volatile: a process restart clears all of it.
package repository

import (
	"context"
	"time"

	"gitseek/internal/domain"
)

// SessionStore owns the session table. Sessions are keyed by their opaque
// token; at most one session exists per user.
type SessionStore interface {
	// Create stores a new session, replacing any existing session for the
	// same user.
	Create(ctx context.Context, session *domain.Session) error
	// GetByToken returns the session for a token. Missing or expired tokens
	// yield a NotFoundError; expired sessions are removed on read.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	// Renew slides the session's expiration forward by its lifetime.
	Renew(ctx context.Context, token string, now time.Time) (*domain.Session, error)
	// SetLifetime changes the session's lifetime and recomputes its
	// expiration from now.
	SetLifetime(ctx context.Context, token string, lifetime time.Duration, now time.Time) (*domain.Session, error)
	// DeleteByToken removes a session. Deleting an unknown token is a no-op.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
