// Package middleware provides HTTP middleware functions.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitseek/internal/domain"
	"gitseek/internal/services"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "gitseek_session"

// SessionContextKey is the key used to store the session in request context.
const SessionContextKey = "session"

// SessionMiddleware resolves the session cookie into a session value for
// downstream handlers. Every successful lookup slides the session expiration
// and refreshes the cookie to match, so the cookie never outlives or
// undercuts the server-side record.
type SessionMiddleware struct {
	authService   services.AuthService
	secureCookies bool
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(authService services.AuthService, secureCookies bool) *SessionMiddleware {
	return &SessionMiddleware{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// RequireAuth aborts with an authorization error when no valid session
// accompanies the request.
func (m *SessionMiddleware) RequireAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		session := m.resolveSession(c)
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": map[string]interface{}{
					"type":    "AUTHORIZATION_ERROR",
					"code":    "NOT_AUTHENTICATED",
					"message": "Authentication required",
				},
			})
			c.Abort()
			return
		}

		c.Set(SessionContextKey, session)
		c.Next()
	})
}

// OptionalAuth resolves the session if present but lets anonymous requests
// through.
func (m *SessionMiddleware) OptionalAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if session := m.resolveSession(c); session != nil {
			c.Set(SessionContextKey, session)
		}
		c.Next()
	})
}

// resolveSession looks up and renews the request's session, refreshing the
// cookie. Returns nil for the normal unauthenticated case.
func (m *SessionMiddleware) resolveSession(c *gin.Context) *domain.Session {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil
	}

	session, err := m.authService.CurrentSession(c.Request.Context(), token)
	if err != nil {
		return nil
	}

	m.SetSessionCookie(c, session)
	return session
}

// SetSessionCookie writes the session cookie with a max-age derived from the
// server-side expiration.
func (m *SessionMiddleware) SetSessionCookie(c *gin.Context, session *domain.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		session.Token,
		int(time.Until(session.ExpiresAt).Seconds()),
		"/",
		"",
		m.secureCookies,
		true, // HttpOnly
	)
}

// ClearSessionCookie invalidates the session cookie.
func (m *SessionMiddleware) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secureCookies, true)
}

// GetSessionFromContext extracts the resolved session from Gin context.
func GetSessionFromContext(c *gin.Context) (*domain.Session, bool) {
	if value, exists := c.Get(SessionContextKey); exists {
		if session, ok := value.(*domain.Session); ok {
			return session, true
		}
	}
	return nil, false
}

// GetUserFromContext extracts the authenticated user from Gin context.
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	if session, ok := GetSessionFromContext(c); ok {
		return session.User, true
	}
	return nil, false
}
