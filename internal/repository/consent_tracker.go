package repository

import (
	"context"
	"sync"

	"gitseek/internal/domain"
)

// ConsentTracker is the "prompt owed" set: membership means the user logged in
// and has not yet answered the remember-me prompt. A user is marked exactly
// once per login and cleared exactly once on resolution; the flag cannot
// reappear until the next fresh login.
type ConsentTracker interface {
	// MarkPromptOwed enters the user into the prompt-owed set.
	MarkPromptOwed(ctx context.Context, userID string) error
	// IsPromptOwed reports whether the user still owes an answer.
	IsPromptOwed(ctx context.Context, userID string) (bool, error)
	// Resolve clears the flag and reports whether it was set. A false return
	// means the prompt was already resolved; callers use this to keep
	// resolution idempotent.
	Resolve(ctx context.Context, userID string) (bool, error)
	// DeleteByUserID clears the flag on logout.
	DeleteByUserID(ctx context.Context, userID string) error
}

// memoryConsentTracker provides an in-memory implementation of ConsentTracker.
type memoryConsentTracker struct {
	owed  map[string]struct{}
	mutex sync.Mutex
}

// NewMemoryConsentTracker creates a new in-memory consent tracker.
func NewMemoryConsentTracker() ConsentTracker {
	return &memoryConsentTracker{
		owed: make(map[string]struct{}),
	}
}

// MarkPromptOwed enters the user into the prompt-owed set
func (t *memoryConsentTracker) MarkPromptOwed(_ context.Context, userID string) error {
	if userID == "" {
		return domain.NewValidationError("MISSING_USER_ID", "User ID is required", nil)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.owed[userID] = struct{}{}
	return nil
}

// IsPromptOwed reports whether the user still owes an answer
func (t *memoryConsentTracker) IsPromptOwed(_ context.Context, userID string) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	_, owed := t.owed[userID]
	return owed, nil
}

// Resolve clears the flag and reports whether it was set
func (t *memoryConsentTracker) Resolve(_ context.Context, userID string) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, owed := t.owed[userID]; !owed {
		return false, nil
	}
	delete(t.owed, userID)
	return true, nil
}

// DeleteByUserID clears the flag on logout
func (t *memoryConsentTracker) DeleteByUserID(_ context.Context, userID string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	delete(t.owed, userID)
	return nil
}
