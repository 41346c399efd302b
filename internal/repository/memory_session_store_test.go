package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitseek/internal/domain"
)

func testSession(token, userID string, lifetime time.Duration) *domain.Session {
	now := time.Now()
	return &domain.Session{
		Token: token,
		User: &domain.User{
			ID:          userID,
			Username:    "octocat",
			DisplayName: "The Octocat",
			AccessToken: "gho_test",
		},
		Lifetime:  lifetime,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGetSession", func(t *testing.T) {
		store := NewMemorySessionStore()

		session := testSession("tok-1", "user123", 2*time.Hour)
		require.NoError(t, store.Create(ctx, session))

		retrieved, err := store.GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "user123", retrieved.User.ID)
		assert.Equal(t, 2*time.Hour, retrieved.Lifetime)
	})

	t.Run("GetUnknownToken", func(t *testing.T) {
		store := NewMemorySessionStore()

		_, err := store.GetByToken(ctx, "missing")
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.NotFoundError, domainErr.Type)
	})

	t.Run("ExpiredSessionRemovedOnRead", func(t *testing.T) {
		store := NewMemorySessionStore()

		session := testSession("tok-2", "user456", time.Hour)
		session.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, store.Create(ctx, session))

		_, err := store.GetByToken(ctx, "tok-2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("OneActiveSessionPerUser", func(t *testing.T) {
		store := NewMemorySessionStore()

		require.NoError(t, store.Create(ctx, testSession("tok-a", "user999", time.Hour)))
		require.NoError(t, store.Create(ctx, testSession("tok-b", "user999", time.Hour)))

		_, err := store.GetByToken(ctx, "tok-a")
		assert.Error(t, err)

		retrieved, err := store.GetByToken(ctx, "tok-b")
		require.NoError(t, err)
		assert.Equal(t, "user999", retrieved.User.ID)
	})

	t.Run("RenewSlidesExpiration", func(t *testing.T) {
		store := NewMemorySessionStore()

		session := testSession("tok-3", "user123", 2*time.Hour)
		require.NoError(t, store.Create(ctx, session))

		renewAt := time.Now().Add(30 * time.Minute)
		renewed, err := store.Renew(ctx, "tok-3", renewAt)
		require.NoError(t, err)
		assert.Equal(t, renewAt.Add(2*time.Hour), renewed.ExpiresAt)
	})

	t.Run("SetLifetimeRecomputesExpiration", func(t *testing.T) {
		store := NewMemorySessionStore()

		session := testSession("tok-4", "user123", 2*time.Hour)
		require.NoError(t, store.Create(ctx, session))

		now := time.Now()
		updated, err := store.SetLifetime(ctx, "tok-4", 30*24*time.Hour, now)
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, updated.Lifetime)
		assert.Equal(t, now.Add(30*24*time.Hour), updated.ExpiresAt)
	})

	t.Run("SetLifetimeRejectsNonPositive", func(t *testing.T) {
		store := NewMemorySessionStore()

		_, err := store.SetLifetime(ctx, "whatever", 0, time.Now())
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ValidationError, domainErr.Type)
	})

	t.Run("DeleteByTokenIsIdempotent", func(t *testing.T) {
		store := NewMemorySessionStore()

		session := testSession("tok-5", "user789", time.Hour)
		require.NoError(t, store.Create(ctx, session))

		require.NoError(t, store.DeleteByToken(ctx, "tok-5"))
		require.NoError(t, store.DeleteByToken(ctx, "tok-5"))

		_, err := store.GetByToken(ctx, "tok-5")
		assert.Error(t, err)
	})

	t.Run("DeleteExpiredSweep", func(t *testing.T) {
		store := NewMemorySessionStore()

		stale := testSession("tok-stale", "user-stale", time.Hour)
		stale.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, store.Create(ctx, stale))
		require.NoError(t, store.Create(ctx, testSession("tok-live", "user-live", time.Hour)))

		require.NoError(t, store.DeleteExpired(ctx))

		_, err := store.GetByToken(ctx, "tok-stale")
		assert.Error(t, err)

		retrieved, err := store.GetByToken(ctx, "tok-live")
		require.NoError(t, err)
		assert.Equal(t, "user-live", retrieved.User.ID)
	})

	t.Run("ReturnedSessionIsACopy", func(t *testing.T) {
		store := NewMemorySessionStore()

		require.NoError(t, store.Create(ctx, testSession("tok-copy", "user123", 2*time.Hour)))

		first, err := store.Renew(ctx, "tok-copy", time.Now())
		require.NoError(t, err)

		// Mutating the returned value must not reach the stored record.
		first.Lifetime = time.Nanosecond
		first.ExpiresAt = time.Now().Add(-time.Hour)

		second, err := store.GetByToken(ctx, "tok-copy")
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, second.Lifetime)
		assert.True(t, second.ExpiresAt.After(time.Now()))
	})

	t.Run("ConcurrentRenewAndDelete", func(t *testing.T) {
		store := NewMemorySessionStore()

		require.NoError(t, store.Create(ctx, testSession("tok-race", "user123", 2*time.Hour)))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					_, _ = store.Renew(ctx, "tok-race", time.Now())
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.DeleteByToken(ctx, "tok-race")
		}()
		wg.Wait()

		// A renewal racing the delete must not resurrect the session.
		_, err := store.GetByToken(ctx, "tok-race")
		assert.Error(t, err)
	})

	t.Run("CreateValidatesSession", func(t *testing.T) {
		store := NewMemorySessionStore()

		err := store.Create(ctx, &domain.Session{Token: "", User: nil})
		require.Error(t, err)
	})
}

func TestMemoryOAuthStateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("ConsumeIsSingleUse", func(t *testing.T) {
		store := NewMemoryOAuthStateStore()

		state := &OAuthState{
			State:     "state-abc",
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
		require.NoError(t, store.Create(ctx, state))

		require.NoError(t, store.Consume(ctx, "state-abc"))
		assert.Error(t, store.Consume(ctx, "state-abc"))
	})

	t.Run("ExpiredStateRejected", func(t *testing.T) {
		store := NewMemoryOAuthStateStore()

		state := &OAuthState{
			State:     "state-old",
			CreatedAt: time.Now().Add(-20 * time.Minute),
			ExpiresAt: time.Now().Add(-10 * time.Minute),
		}
		require.NoError(t, store.Create(ctx, state))

		err := store.Consume(ctx, "state-old")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("UnknownStateRejected", func(t *testing.T) {
		store := NewMemoryOAuthStateStore()

		err := store.Consume(ctx, "never-issued")
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.AuthenticationError, domainErr.Type)
	})

	t.Run("DeleteExpiredSweep", func(t *testing.T) {
		store := NewMemoryOAuthStateStore()

		require.NoError(t, store.Create(ctx, &OAuthState{
			State:     "stale",
			ExpiresAt: time.Now().Add(-time.Minute),
		}))
		require.NoError(t, store.Create(ctx, &OAuthState{
			State:     "live",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}))

		require.NoError(t, store.DeleteExpired(ctx))

		assert.Error(t, store.Consume(ctx, "stale"))
		assert.NoError(t, store.Consume(ctx, "live"))
	})
}
