package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"gitseek/internal/domain"
	"gitseek/internal/repository"
)

type authFixture struct {
	svc      *authService
	sessions repository.SessionStore
	visits   repository.VisitStore
	consent  repository.ConsentTracker
	history  repository.SearchHistoryStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		sessions: repository.NewMemorySessionStore(),
		visits:   repository.NewMemoryVisitStore(50, repository.DefaultVisitRetention),
		consent:  repository.NewMemoryConsentTracker(),
		history:  repository.NewMemorySearchHistoryStore(10),
	}

	svc := NewAuthService(
		"client-id", "client-secret", "http://localhost:5000/auth/github/callback",
		SessionLifetimes{Short: 2 * time.Hour, Extended: 30 * 24 * time.Hour},
		repository.NewMemoryOAuthStateStore(),
		f.sessions, f.visits, f.consent, f.history,
	).(*authService)

	svc.exchange = func(_ context.Context, code string) (*oauth2.Token, error) {
		if code != "good-code" {
			return nil, errors.New("bad verification code")
		}
		return &oauth2.Token{AccessToken: "gho_test"}, nil
	}
	svc.fetchIdentity = func(_ context.Context, accessToken string) (*domain.User, error) {
		return &domain.User{
			ID:          "583231",
			Username:    "octocat",
			DisplayName: "The Octocat",
			AvatarURL:   "https://avatars.githubusercontent.com/u/583231",
			AccessToken: accessToken,
		}, nil
	}

	f.svc = svc
	return f
}

// login runs the begin/complete round trip and returns the session.
func (f *authFixture) login(t *testing.T) *domain.Session {
	t.Helper()
	ctx := context.Background()

	authURL, err := f.svc.BeginLogin(ctx)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	session, err := f.svc.CompleteLogin(ctx, "good-code", state)
	require.NoError(t, err)
	return session
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("BeginLoginBuildsAuthorizeURL", func(t *testing.T) {
		f := newAuthFixture(t)

		authURL, err := f.svc.BeginLogin(ctx)
		require.NoError(t, err)

		parsed, err := url.Parse(authURL)
		require.NoError(t, err)
		assert.Equal(t, "github.com", parsed.Host)
		assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
		assert.Equal(t, "user:email", parsed.Query().Get("scope"))
		assert.NotEmpty(t, parsed.Query().Get("state"))
	})

	t.Run("CompleteLoginEstablishesShortSession", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)

		assert.Equal(t, "octocat", session.User.Username)
		assert.Equal(t, 2*time.Hour, session.Lifetime)
		assert.NotEmpty(t, session.Token)

		// New login owes the consent prompt and has an empty visit bucket
		owed, err := f.svc.IsPromptOwed(ctx, session.Token)
		require.NoError(t, err)
		assert.True(t, owed)

		records, err := f.visits.MostVisited(ctx, session.User.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("CallbackWithUnknownStateFails", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.CompleteLogin(ctx, "good-code", "forged-state")
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.AuthenticationError, domainErr.Type)
	})

	t.Run("StateIsSingleUse", func(t *testing.T) {
		f := newAuthFixture(t)

		authURL, err := f.svc.BeginLogin(ctx)
		require.NoError(t, err)
		parsed, _ := url.Parse(authURL)
		state := parsed.Query().Get("state")

		_, err = f.svc.CompleteLogin(ctx, "good-code", state)
		require.NoError(t, err)

		_, err = f.svc.CompleteLogin(ctx, "good-code", state)
		assert.Error(t, err)
	})

	t.Run("ExchangeFailureIsUpstreamError", func(t *testing.T) {
		f := newAuthFixture(t)

		authURL, err := f.svc.BeginLogin(ctx)
		require.NoError(t, err)
		parsed, _ := url.Parse(authURL)

		_, err = f.svc.CompleteLogin(ctx, "bad-code", parsed.Query().Get("state"))
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ExternalServiceError, domainErr.Type)
	})
}

func TestAuthServiceSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("CurrentSessionSlidesExpiration", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)
		firstExpiry := session.ExpiresAt

		time.Sleep(10 * time.Millisecond)

		renewed, err := f.svc.CurrentSession(ctx, session.Token)
		require.NoError(t, err)
		assert.True(t, renewed.ExpiresAt.After(firstExpiry))
	})

	t.Run("UnknownTokenIsUnauthenticated", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.CurrentSession(ctx, "no-such-token")
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.NotFoundError, domainErr.Type)
	})

	t.Run("LogoutClearsAllUserState", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)
		userID := session.User.ID

		_, err := f.visits.RecordVisit(ctx, userID, "https://github.com/a/b", "b", domain.RepoSnapshot{})
		require.NoError(t, err)
		require.NoError(t, f.history.Record(ctx, userID, "react"))

		require.NoError(t, f.svc.Logout(ctx, session.Token))

		_, err = f.svc.CurrentSession(ctx, session.Token)
		assert.Error(t, err)

		records, err := f.visits.MostVisited(ctx, userID, 10)
		require.NoError(t, err)
		assert.Empty(t, records)

		history, err := f.history.RecentSearches(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, history)

		owed, err := f.svc.IsPromptOwed(ctx, session.Token)
		require.NoError(t, err)
		assert.False(t, owed)
	})

	t.Run("LogoutWithoutSessionIsNoOp", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.NoError(t, f.svc.Logout(ctx, "never-issued"))
	})
}

func TestAuthServiceConsent(t *testing.T) {
	ctx := context.Background()

	t.Run("RememberExtendsLifetime", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)

		resolved, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentRemember)
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, resolved.Lifetime)

		owed, err := f.svc.IsPromptOwed(ctx, session.Token)
		require.NoError(t, err)
		assert.False(t, owed)
	})

	t.Run("ExplicitNoKeepsShortLifetime", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)

		resolved, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentForget)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, resolved.Lifetime)
	})

	t.Run("DismissalDefaultsToExtended", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)

		resolved, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentDismissed)
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, resolved.Lifetime)
	})

	t.Run("ResolveIsIdempotent", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)

		first, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentRemember)
		require.NoError(t, err)

		// Double-submit must not move the expiration again
		second, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentRemember)
		require.NoError(t, err)
		assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
		assert.Equal(t, first.Lifetime, second.Lifetime)

		// Nor may a later contradictory answer shorten it
		third, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentForget)
		require.NoError(t, err)
		assert.Equal(t, first.Lifetime, third.Lifetime)
	})

	t.Run("UnauthenticatedResolveRejected", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.ResolveConsent(ctx, "never-issued", domain.ConsentRemember)
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.AuthorizationError, domainErr.Type)
	})

	t.Run("FreshLoginReArmsPrompt", func(t *testing.T) {
		f := newAuthFixture(t)
		session := f.login(t)

		_, err := f.svc.ResolveConsent(ctx, session.Token, domain.ConsentRemember)
		require.NoError(t, err)

		// Same user logs in again
		session2 := f.login(t)
		owed, err := f.svc.IsPromptOwed(ctx, session2.Token)
		require.NoError(t, err)
		assert.True(t, owed)
		assert.Equal(t, 2*time.Hour, session2.Lifetime, "new session starts short again")
	})
}
