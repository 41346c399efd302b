// Package services provides business logic for authentication, consent, and
// repository search.
package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"gitseek/internal/domain"
	"gitseek/internal/repository"
)

// oauthStateTTL bounds how long a login redirect may sit before the callback.
const oauthStateTTL = 10 * time.Minute

// SessionLifetimes holds the two session durations the consent prompt picks
// between.
type SessionLifetimes struct {
	// Short is the default lifetime until the user answers the prompt.
	Short time.Duration
	// Extended is the lifetime after the user consents to being remembered.
	Extended time.Duration
}

// AuthService is the session authority: it runs the OAuth flow, owns session
// issue/renewal/revocation, and applies consent resolution to session
// lifetime.
type AuthService interface {
	// BeginLogin returns the GitHub authorize URL for a new login attempt.
	BeginLogin(ctx context.Context) (string, error)
	// CompleteLogin verifies the callback state, exchanges the code, builds
	// the user identity, and establishes a session with the short lifetime.
	// The new user starts with an empty visit bucket and an owed consent
	// prompt.
	CompleteLogin(ctx context.Context, code, state string) (*domain.Session, error)
	// CurrentSession resolves a session token and slides its expiration
	// forward. A missing or expired token yields a NotFoundError; callers
	// treat that as the normal unauthenticated case.
	CurrentSession(ctx context.Context, token string) (*domain.Session, error)
	// IsPromptOwed reports whether the session's user still owes a consent
	// answer. Unauthenticated callers get false, not an error.
	IsPromptOwed(ctx context.Context, token string) (bool, error)
	// ResolveConsent applies the user's remember-me choice to the session
	// lifetime. Resolving an already-resolved prompt changes nothing.
	ResolveConsent(ctx context.Context, token string, choice domain.ConsentChoice) (*domain.Session, error)
	// Logout destroys all per-user in-memory state, then the session itself.
	// Safe to call without an active session.
	Logout(ctx context.Context, token string) error
}

// authService implements AuthService.
type authService struct {
	config        *oauth2.Config
	states        repository.OAuthStateStore
	sessions      repository.SessionStore
	visits        repository.VisitStore
	consent       repository.ConsentTracker
	history       repository.SearchHistoryStore
	lifetimes     SessionLifetimes
	exchange      func(ctx context.Context, code string) (*oauth2.Token, error)
	fetchIdentity func(ctx context.Context, accessToken string) (*domain.User, error)
}

// NewAuthService creates a new session authority backed by the given stores.
func NewAuthService(
	clientID, clientSecret, redirectURL string,
	lifetimes SessionLifetimes,
	states repository.OAuthStateStore,
	sessions repository.SessionStore,
	visits repository.VisitStore,
	consent repository.ConsentTracker,
	history repository.SearchHistoryStore,
) AuthService {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"user:email"},
		Endpoint:     endpoints.GitHub,
	}

	svc := &authService{
		config:        config,
		states:        states,
		sessions:      sessions,
		visits:        visits,
		consent:       consent,
		history:       history,
		lifetimes:     lifetimes,
		fetchIdentity: fetchGitHubIdentity,
	}
	svc.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return config.Exchange(ctx, code)
	}
	return svc
}

// BeginLogin returns the GitHub authorize URL for a new login attempt
func (s *authService) BeginLogin(ctx context.Context) (string, error) {
	state, err := generateToken()
	if err != nil {
		return "", domain.NewInternalError("STATE_GENERATION_FAILED", "Failed to generate OAuth state", err)
	}

	now := time.Now()
	if err := s.states.Create(ctx, &repository.OAuthState{
		State:     state,
		CreatedAt: now,
		ExpiresAt: now.Add(oauthStateTTL),
	}); err != nil {
		return "", domain.NewStorageError("STATE_SAVE_FAILED", "Failed to store OAuth state", err)
	}

	return s.config.AuthCodeURL(state), nil
}

// CompleteLogin verifies the callback, materializes the identity, and issues a session
func (s *authService) CompleteLogin(ctx context.Context, code, state string) (*domain.Session, error) {
	if err := s.states.Consume(ctx, state); err != nil {
		return nil, err
	}

	token, err := s.exchange(ctx, code)
	if err != nil {
		return nil, domain.NewExternalServiceError("OAUTH_EXCHANGE_FAILED", "Failed to exchange code for token", err)
	}

	user, err := s.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, domain.NewExternalServiceError("OAUTH_PROFILE_FAILED", "Failed to fetch GitHub profile", err)
	}

	sessionToken, err := generateToken()
	if err != nil {
		return nil, domain.NewInternalError("TOKEN_GENERATION_FAILED", "Failed to generate session token", err)
	}

	now := time.Now()
	session := &domain.Session{
		Token:     sessionToken,
		User:      user,
		Lifetime:  s.lifetimes.Short,
		CreatedAt: now,
		ExpiresAt: now.Add(s.lifetimes.Short),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.NewStorageError("SESSION_SAVE_FAILED", "Failed to store session", err)
	}

	if err := s.visits.Register(ctx, user.ID); err != nil {
		return nil, domain.NewStorageError("VISIT_REGISTER_FAILED", "Failed to register visit bucket", err)
	}

	if err := s.consent.MarkPromptOwed(ctx, user.ID); err != nil {
		return nil, domain.NewStorageError("CONSENT_MARK_FAILED", "Failed to arm consent prompt", err)
	}

	return session, nil
}

// CurrentSession resolves a session token with sliding renewal
func (s *authService) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.NewNotFoundError("SESSION_NOT_FOUND", "No session token")
	}
	return s.sessions.Renew(ctx, token, time.Now())
}

// IsPromptOwed reports whether the session's user still owes a consent answer
func (s *authService) IsPromptOwed(ctx context.Context, token string) (bool, error) {
	session, err := s.CurrentSession(ctx, token)
	if err != nil {
		// Unauthenticated is a normal negative here, not an error
		return false, nil
	}
	return s.consent.IsPromptOwed(ctx, session.User.ID)
}

// ResolveConsent applies the remember-me choice to the session lifetime
func (s *authService) ResolveConsent(
	ctx context.Context, token string, choice domain.ConsentChoice,
) (*domain.Session, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Consent resolution requires a session")
	}

	owed, err := s.consent.IsPromptOwed(ctx, session.User.ID)
	if err != nil {
		return nil, domain.NewStorageError("CONSENT_READ_FAILED", "Failed to read consent state", err)
	}
	if !owed {
		// Already resolved: duplicate calls must not move the expiration
		return session, nil
	}

	lifetime := s.lifetimes.Short
	if choice.Extends() {
		lifetime = s.lifetimes.Extended
	}

	// Apply the lifetime before clearing the flag so a failed save leaves the
	// prompt owed rather than consent silently disagreeing with expiration.
	session, err = s.sessions.SetLifetime(ctx, token, lifetime, time.Now())
	if err != nil {
		return nil, domain.NewStorageError("SESSION_SAVE_FAILED", "Failed to save session lifetime", err)
	}

	if _, err := s.consent.Resolve(ctx, session.User.ID); err != nil {
		return nil, domain.NewStorageError("CONSENT_RESOLVE_FAILED", "Failed to clear consent prompt", err)
	}

	return session, nil
}

// Logout destroys all per-user state, then the session
func (s *authService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		// No active session: logout is a no-op success
		return nil
	}

	userID := session.User.ID
	if err := s.visits.DeleteByUserID(ctx, userID); err != nil {
		return domain.NewStorageError("VISIT_DELETE_FAILED", "Failed to clear visit history", err)
	}
	if err := s.history.DeleteByUserID(ctx, userID); err != nil {
		return domain.NewStorageError("HISTORY_DELETE_FAILED", "Failed to clear search history", err)
	}
	if err := s.consent.DeleteByUserID(ctx, userID); err != nil {
		return domain.NewStorageError("CONSENT_DELETE_FAILED", "Failed to clear consent flag", err)
	}

	return s.sessions.DeleteByToken(ctx, token)
}

// fetchGitHubIdentity builds the immutable identity value from the GitHub API.
func fetchGitHubIdentity(ctx context.Context, accessToken string) (*domain.User, error) {
	client := github.NewClient(nil).WithAuthToken(accessToken)

	ghUser, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, err
	}

	displayName := ghUser.GetName()
	if displayName == "" {
		displayName = ghUser.GetLogin()
	}

	return &domain.User{
		ID:          strconv.FormatInt(ghUser.GetID(), 10),
		Username:    ghUser.GetLogin(),
		DisplayName: displayName,
		AvatarURL:   ghUser.GetAvatarURL(),
		AccessToken: accessToken,
	}, nil
}

// generateToken generates a cryptographically secure random token string.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
