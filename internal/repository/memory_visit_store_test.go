package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitseek/internal/domain"
)

func TestMemoryVisitStore(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstVisitStartsAtOne", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		record, err := store.RecordVisit(ctx, "user1", "https://github.com/gin-gonic/gin", "gin", domain.RepoSnapshot{
			Description: "HTTP web framework",
			Stars:       80000,
			Language:    "Go",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, record.Count)
		assert.Equal(t, "gin", record.Name)
		assert.Equal(t, "Go", record.Language)
	})

	t.Run("RepeatVisitsIncrementAndOverwriteSnapshot", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		const url = "https://github.com/spf13/cobra"
		for i := 1; i <= 5; i++ {
			snapshot := domain.RepoSnapshot{
				Description: fmt.Sprintf("description %d", i),
				Stars:       i * 100,
				Language:    "Go",
			}
			record, err := store.RecordVisit(ctx, "user1", url, "cobra", snapshot)
			require.NoError(t, err)
			assert.Equal(t, i, record.Count)
		}

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		// Snapshot reflects the last visit only
		assert.Equal(t, 5, records[0].Count)
		assert.Equal(t, "description 5", records[0].Description)
		assert.Equal(t, 500, records[0].Stars)
	})

	t.Run("MostVisitedOrdersByRecencyNotFrequency", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention).(*memoryVisitStore)

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := base
		store.now = func() time.Time { return clock }

		// "popular" gets three visits, all early
		for i := 0; i < 3; i++ {
			clock = base.Add(time.Duration(i) * time.Minute)
			_, err := store.RecordVisit(ctx, "user1", "https://github.com/a/popular", "popular", domain.RepoSnapshot{})
			require.NoError(t, err)
		}

		// "fresh" gets one visit, later
		clock = base.Add(time.Hour)
		_, err := store.RecordVisit(ctx, "user1", "https://github.com/b/fresh", "fresh", domain.RepoSnapshot{})
		require.NoError(t, err)

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "fresh", records[0].Name)
		assert.Equal(t, "popular", records[1].Name)
	})

	t.Run("MostVisitedHonorsLimit", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		for i := 0; i < 15; i++ {
			url := fmt.Sprintf("https://github.com/org/repo%d", i)
			_, err := store.RecordVisit(ctx, "user1", url, fmt.Sprintf("repo%d", i), domain.RepoSnapshot{})
			require.NoError(t, err)
		}

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		assert.Len(t, records, 10)
	})

	t.Run("RetentionPrunesStaleRecords", func(t *testing.T) {
		store := NewMemoryVisitStore(50, 30*24*time.Hour).(*memoryVisitStore)

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := base
		store.now = func() time.Time { return clock }

		_, err := store.RecordVisit(ctx, "user1", "https://github.com/old/repo", "old", domain.RepoSnapshot{})
		require.NoError(t, err)

		// A visit 31 days later triggers pruning of the stale record
		clock = base.Add(31 * 24 * time.Hour)
		_, err = store.RecordVisit(ctx, "user1", "https://github.com/new/repo", "new", domain.RepoSnapshot{})
		require.NoError(t, err)

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "new", records[0].Name)
	})

	t.Run("CapacityBoundEvictsLeastRecent", func(t *testing.T) {
		store := NewMemoryVisitStore(3, DefaultVisitRetention).(*memoryVisitStore)

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := base
		store.now = func() time.Time { return clock }

		for i := 0; i < 5; i++ {
			clock = base.Add(time.Duration(i) * time.Minute)
			url := fmt.Sprintf("https://github.com/org/repo%d", i)
			_, err := store.RecordVisit(ctx, "user1", url, fmt.Sprintf("repo%d", i), domain.RepoSnapshot{})
			require.NoError(t, err)
		}

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "repo4", records[0].Name)
		assert.Equal(t, "repo3", records[1].Name)
		assert.Equal(t, "repo2", records[2].Name)
	})

	t.Run("UnknownUserGetsEmptySlice", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		records, err := store.MostVisited(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("MissingUserIDRejected", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		_, err := store.RecordVisit(ctx, "", "https://github.com/a/b", "b", domain.RepoSnapshot{})
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.AuthorizationError, domainErr.Type)
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		_, err := store.RecordVisit(ctx, "user1", "https://github.com/a/b", "b", domain.RepoSnapshot{})
		require.NoError(t, err)

		records, err := store.MostVisited(ctx, "user2", 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("DeleteByUserIDDropsEverything", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		_, err := store.RecordVisit(ctx, "user1", "https://github.com/a/b", "b", domain.RepoSnapshot{})
		require.NoError(t, err)

		require.NoError(t, store.DeleteByUserID(ctx, "user1"))

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("RegisterKeepsExistingRecords", func(t *testing.T) {
		store := NewMemoryVisitStore(50, DefaultVisitRetention)

		_, err := store.RecordVisit(ctx, "user1", "https://github.com/a/b", "b", domain.RepoSnapshot{})
		require.NoError(t, err)

		require.NoError(t, store.Register(ctx, "user1"))

		records, err := store.MostVisited(ctx, "user1", 10)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}
