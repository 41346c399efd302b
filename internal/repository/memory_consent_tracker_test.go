package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryConsentTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("PromptOwedAfterMark", func(t *testing.T) {
		tracker := NewMemoryConsentTracker()

		owed, err := tracker.IsPromptOwed(ctx, "user1")
		require.NoError(t, err)
		assert.False(t, owed)

		require.NoError(t, tracker.MarkPromptOwed(ctx, "user1"))

		owed, err = tracker.IsPromptOwed(ctx, "user1")
		require.NoError(t, err)
		assert.True(t, owed)
	})

	t.Run("ResolveClearsExactlyOnce", func(t *testing.T) {
		tracker := NewMemoryConsentTracker()
		require.NoError(t, tracker.MarkPromptOwed(ctx, "user1"))

		transitioned, err := tracker.Resolve(ctx, "user1")
		require.NoError(t, err)
		assert.True(t, transitioned)

		// Second resolve reports no transition
		transitioned, err = tracker.Resolve(ctx, "user1")
		require.NoError(t, err)
		assert.False(t, transitioned)

		owed, err := tracker.IsPromptOwed(ctx, "user1")
		require.NoError(t, err)
		assert.False(t, owed)
	})

	t.Run("FreshLoginReArmsPrompt", func(t *testing.T) {
		tracker := NewMemoryConsentTracker()

		require.NoError(t, tracker.MarkPromptOwed(ctx, "user1"))
		_, err := tracker.Resolve(ctx, "user1")
		require.NoError(t, err)

		require.NoError(t, tracker.MarkPromptOwed(ctx, "user1"))

		owed, err := tracker.IsPromptOwed(ctx, "user1")
		require.NoError(t, err)
		assert.True(t, owed)
	})

	t.Run("MarkRequiresUserID", func(t *testing.T) {
		tracker := NewMemoryConsentTracker()
		assert.Error(t, tracker.MarkPromptOwed(ctx, ""))
	})

	t.Run("DeleteByUserID", func(t *testing.T) {
		tracker := NewMemoryConsentTracker()
		require.NoError(t, tracker.MarkPromptOwed(ctx, "user1"))
		require.NoError(t, tracker.DeleteByUserID(ctx, "user1"))

		owed, err := tracker.IsPromptOwed(ctx, "user1")
		require.NoError(t, err)
		assert.False(t, owed)
	})
}

func TestMemorySearchHistoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("NewestFirst", func(t *testing.T) {
		store := NewMemorySearchHistoryStore(10).(*memorySearchHistoryStore)

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := base
		store.now = func() time.Time { return clock }

		require.NoError(t, store.Record(ctx, "user1", "react"))
		clock = base.Add(time.Minute)
		require.NoError(t, store.Record(ctx, "user1", "vue"))

		history, err := store.RecentSearches(ctx, "user1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "vue", history[0].Query)
		assert.Equal(t, "react", history[1].Query)
	})

	t.Run("CappedAtLimit", func(t *testing.T) {
		store := NewMemorySearchHistoryStore(10)

		for i := 0; i < 15; i++ {
			require.NoError(t, store.Record(ctx, "user1", "query"))
		}

		history, err := store.RecentSearches(ctx, "user1")
		require.NoError(t, err)
		assert.Len(t, history, 10)
	})

	t.Run("UnauthenticatedRejected", func(t *testing.T) {
		store := NewMemorySearchHistoryStore(10)

		assert.Error(t, store.Record(ctx, "", "query"))
		_, err := store.RecentSearches(ctx, "")
		assert.Error(t, err)
	})

	t.Run("DeleteByUserID", func(t *testing.T) {
		store := NewMemorySearchHistoryStore(10)

		require.NoError(t, store.Record(ctx, "user1", "react"))
		require.NoError(t, store.DeleteByUserID(ctx, "user1"))

		history, err := store.RecentSearches(ctx, "user1")
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}
