package domain

import (
	"time"
)

// Session is a server-side session keyed by an opaque token delivered via a
// cookie. Lifetime starts short and switches to the extended value once the
// user resolves the remember-me prompt; every authenticated request slides
// ExpiresAt forward by Lifetime.
type Session struct {
	Token     string        `json:"-"` // Never serialize the token
	User      *User         `json:"user"`
	Lifetime  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Validate validates the session
func (s *Session) Validate() error {
	if s.Token == "" {
		return NewValidationError("MISSING_TOKEN", "Session token is required", nil)
	}
	if s.User == nil {
		return NewValidationError("MISSING_USER", "Session user is required", nil)
	}
	if s.Lifetime <= 0 {
		return NewValidationError("INVALID_LIFETIME", "Session lifetime must be positive", nil)
	}
	return s.User.Validate()
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch slides the expiration forward by the session's lifetime.
func (s *Session) Touch(now time.Time) {
	s.ExpiresAt = now.Add(s.Lifetime)
}
