package repository

import (
	"context"

	"gitseek/internal/domain"
)

// VisitStore owns per-user visit history: a bounded, retention-pruned map of
// visited repositories keyed by URL.
type VisitStore interface {
	// Register creates an empty visit bucket for a user. Called on login
	// completion; registering an existing user keeps their records.
	Register(ctx context.Context, userID string) error
	// RecordVisit creates or updates the record for (user, URL): the count
	// increments by one, the snapshot is overwritten, last-visited becomes
	// now. Eviction runs afterwards and never fails the call.
	RecordVisit(ctx context.Context, userID, repoURL, repoName string, snapshot domain.RepoSnapshot) (*domain.VisitedRepo, error)
	// MostVisited returns up to limit records ordered by most-recent visit
	// first. Unknown users get an empty slice, not an error.
	MostVisited(ctx context.Context, userID string, limit int) ([]domain.VisitedRepo, error)
	// DeleteByUserID drops a user's entire visit map.
	DeleteByUserID(ctx context.Context, userID string) error
}
