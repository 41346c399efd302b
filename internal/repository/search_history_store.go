package repository

import (
	"context"
	"sync"
	"time"

	"gitseek/internal/domain"
)

// DefaultSearchHistoryLimit bounds the recent-search list kept per user.
const DefaultSearchHistoryLimit = 10

// SearchHistoryStore keeps each user's recent successful searches, newest
// first. Failed searches are never recorded.
type SearchHistoryStore interface {
	Record(ctx context.Context, userID, query string) error
	RecentSearches(ctx context.Context, userID string) ([]domain.RecentSearch, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// memorySearchHistoryStore provides an in-memory implementation of SearchHistoryStore.
type memorySearchHistoryStore struct {
	searches map[string][]domain.RecentSearch
	limit    int
	now      func() time.Time
	mutex    sync.RWMutex
}

// NewMemorySearchHistoryStore creates a new in-memory search history store.
func NewMemorySearchHistoryStore(limit int) SearchHistoryStore {
	if limit <= 0 {
		limit = DefaultSearchHistoryLimit
	}
	return &memorySearchHistoryStore{
		searches: make(map[string][]domain.RecentSearch),
		limit:    limit,
		now:      time.Now,
	}
}

// Record prepends a search to the user's history
func (s *memorySearchHistoryStore) Record(_ context.Context, userID, query string) error {
	if userID == "" {
		return domain.NewAuthorizationError("NOT_AUTHENTICATED", "Search history requires a user")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry := domain.RecentSearch{Query: query, Timestamp: s.now()}
	history := append([]domain.RecentSearch{entry}, s.searches[userID]...)
	if len(history) > s.limit {
		history = history[:s.limit]
	}
	s.searches[userID] = history
	return nil
}

// RecentSearches returns the user's history, newest first
func (s *memorySearchHistoryStore) RecentSearches(_ context.Context, userID string) ([]domain.RecentSearch, error) {
	if userID == "" {
		return nil, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Search history requires a user")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	history := s.searches[userID]
	out := make([]domain.RecentSearch, len(history))
	copy(out, history)
	return out, nil
}

// DeleteByUserID drops a user's search history
func (s *memorySearchHistoryStore) DeleteByUserID(_ context.Context, userID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.searches, userID)
	return nil
}
