package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gitseek/internal/api/middleware"
	"gitseek/internal/domain"
	"gitseek/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles the GitHub OAuth flow and session endpoints.
type AuthHandler struct {
	authService services.AuthService
	sessions    *middleware.SessionMiddleware
	frontendURL string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	authService services.AuthService,
	sessions *middleware.SessionMiddleware,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		frontendURL: frontendURL,
	}
}

// RegisterRoutes registers authentication routes with the router.
func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	{
		auth.GET("/github", h.BeginLogin)
		auth.GET("/github/callback", h.Callback)
		// CurrentUser answers 401 {user: null} itself, so auth is optional
		// here; Remember needs the middleware's sliding renewal and 401.
		auth.GET("/user", h.sessions.OptionalAuth(), h.CurrentUser)
		auth.GET("/check-prompt", h.CheckPrompt)
		auth.POST("/remember", h.sessions.RequireAuth(), h.Remember)
		auth.GET("/logout", h.Logout)
	}
}

// BeginLogin redirects the browser to the GitHub authorize page.
func (h *AuthHandler) BeginLogin(c *gin.Context) {
	authorizeURL, err := h.authService.BeginLogin(c.Request.Context())
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}
	c.Redirect(http.StatusFound, authorizeURL)
}

// Callback completes the OAuth flow. Success and failure both land the
// browser back on the frontend; failures carry an error query parameter
// instead of a JSON body.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	session, err := h.authService.CompleteLogin(c.Request.Context(), code, state)
	if err != nil {
		getDefaultSanitizer().LogError(c, err)
		c.Redirect(http.StatusFound, h.frontendRedirect("auth_failed"))
		return
	}

	h.sessions.SetSessionCookie(c, session)
	c.Redirect(http.StatusFound, h.frontendURL)
}

// CurrentUser returns the authenticated user's public profile.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"user":    nil,
		})
		return
	}
	SuccessResponse(c, gin.H{"user": session.User.Public()})
}

// CheckPrompt reports whether the remember-me prompt is still owed.
// Unauthenticated callers get false rather than an error so the frontend
// can poll this endpoint unconditionally.
func (h *AuthHandler) CheckPrompt(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookieName)

	showPrompt, err := h.authService.IsPromptOwed(c.Request.Context(), token)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"showPrompt": showPrompt})
}

// rememberRequest carries the user's consent answer. A nil Remember means
// the prompt was dismissed without an explicit choice.
type rememberRequest struct {
	Remember *bool `json:"remember"`
}

// Remember resolves the one-time consent prompt and applies the chosen
// session lifetime.
func (h *AuthHandler) Remember(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		SanitizedErrorResponse(c, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Authentication required"))
		return
	}

	// An empty body is a dismissal, same as {} — only malformed JSON is an
	// error.
	var req rememberRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		SanitizedErrorResponse(c, domain.NewValidationError("INVALID_REQUEST", "Invalid request body", nil))
		return
	}

	choice := domain.ConsentDismissed
	if req.Remember != nil {
		if *req.Remember {
			choice = domain.ConsentRemember
		} else {
			choice = domain.ConsentForget
		}
	}

	updated, err := h.authService.ResolveConsent(c.Request.Context(), session.Token, choice)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	h.sessions.SetSessionCookie(c, updated)
	SuccessResponse(c, gin.H{
		"remembered": choice.Extends(),
		"expiresAt":  updated.ExpiresAt,
	})
}

// Logout destroys the session and every piece of per-user state, then
// clears the cookie. Calling it without a session is fine.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookieName)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	h.sessions.ClearSessionCookie(c)
	SuccessResponse(c, gin.H{"loggedOut": true})
}

func (h *AuthHandler) frontendRedirect(errCode string) string {
	return fmt.Sprintf("%s?error=%s", h.frontendURL, url.QueryEscape(errCode))
}
