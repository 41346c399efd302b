package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"gitseek/internal/domain"
)

const (
	// DefaultVisitCapacity bounds the number of records kept per user.
	DefaultVisitCapacity = 50
	// DefaultVisitRetention is how long a record survives without a new visit.
	DefaultVisitRetention = 30 * 24 * time.Hour
)

// memoryVisitStore provides an in-memory implementation of VisitStore.
type memoryVisitStore struct {
	visits    map[string]map[string]*domain.VisitedRepo // user ID -> repo URL -> record
	capacity  int
	retention time.Duration
	now       func() time.Time
	mutex     sync.RWMutex
}

// NewMemoryVisitStore creates a new in-memory visit store with the given
// per-user capacity and retention window. Non-positive values fall back to the
// defaults.
func NewMemoryVisitStore(capacity int, retention time.Duration) VisitStore {
	if capacity <= 0 {
		capacity = DefaultVisitCapacity
	}
	if retention <= 0 {
		retention = DefaultVisitRetention
	}
	return &memoryVisitStore{
		visits:    make(map[string]map[string]*domain.VisitedRepo),
		capacity:  capacity,
		retention: retention,
		now:       time.Now,
	}
}

// Register creates an empty visit bucket for a user
func (s *memoryVisitStore) Register(_ context.Context, userID string) error {
	if userID == "" {
		return domain.NewValidationError("MISSING_USER_ID", "User ID is required", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.visits[userID]; !exists {
		s.visits[userID] = make(map[string]*domain.VisitedRepo)
	}
	return nil
}

// RecordVisit creates or updates the record for (user, URL)
func (s *memoryVisitStore) RecordVisit(
	_ context.Context, userID, repoURL, repoName string, snapshot domain.RepoSnapshot,
) (*domain.VisitedRepo, error) {
	if userID == "" {
		return nil, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Visit tracking requires a user")
	}

	record := &domain.VisitedRepo{
		URL:          repoURL,
		Name:         repoName,
		Count:        1,
		RepoSnapshot: snapshot,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	repos, exists := s.visits[userID]
	if !exists {
		repos = make(map[string]*domain.VisitedRepo)
		s.visits[userID] = repos
	}

	now := s.now()
	if existing, ok := repos[repoURL]; ok {
		record.Count = existing.Count + 1
	}
	record.LastVisited = now
	repos[repoURL] = record

	s.evictLocked(repos, now)

	return record, nil
}

// MostVisited returns up to limit records ordered by most-recent visit first
func (s *memoryVisitStore) MostVisited(_ context.Context, userID string, limit int) ([]domain.VisitedRepo, error) {
	if userID == "" {
		return nil, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Visit history requires a user")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	repos := s.visits[userID]
	records := make([]domain.VisitedRepo, 0, len(repos))
	for _, record := range repos {
		records = append(records, *record)
	}

	// Recency, not frequency, drives the ordering
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastVisited.After(records[j].LastVisited)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// DeleteByUserID drops a user's entire visit map
func (s *memoryVisitStore) DeleteByUserID(_ context.Context, userID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.visits, userID)
	return nil
}

// evictLocked prunes records older than the retention window, then enforces
// the capacity bound by keeping the most recently visited entries.
func (s *memoryVisitStore) evictLocked(repos map[string]*domain.VisitedRepo, now time.Time) {
	cutoff := now.Add(-s.retention)
	for url, record := range repos {
		if record.LastVisited.Before(cutoff) {
			delete(repos, url)
		}
	}

	if len(repos) <= s.capacity {
		return
	}

	records := make([]*domain.VisitedRepo, 0, len(repos))
	for _, record := range repos {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastVisited.After(records[j].LastVisited)
	})
	for _, record := range records[s.capacity:] {
		delete(repos, record.URL)
	}
}
