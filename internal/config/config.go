// Package config provides application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config defines the application configuration interface.
type Config interface {
	GetServerPort() string
	GetEnvironment() string
	GetFrontendURL() string
	IsProduction() bool
}

// OAuthConfig interface for GitHub OAuth configuration.
type OAuthConfig interface {
	GetGitHubClientID() string
	GetGitHubClientSecret() string
	GetOAuthRedirectURL() string
}

// SessionConfig interface for session lifetime configuration.
type SessionConfig interface {
	GetSessionShortLifetime() time.Duration
	GetSessionExtendedLifetime() time.Duration
}

// SearchConfig interface for search and visit-tracking configuration.
type SearchConfig interface {
	GetSearchPageSize() int
	GetSearchPageCap() int
	GetVisitCapacity() int
	GetVisitRetention() time.Duration
}

// AppConfig implements all configuration interfaces.
type AppConfig struct {
	serverPort         string
	environment        string
	frontendURL        string
	githubClientID     string
	githubClientSecret string
	oauthRedirectURL   string
	sessionShort       time.Duration
	sessionExtended    time.Duration
	searchPageSize     int
	searchPageCap      int
	visitCapacity      int
	visitRetention     time.Duration
	rateLimitEnabled   bool
	rateLimitPerMinute int
	redisEnabled       bool
	redisAddr          string
	redisPassword      string
	redisDB            int
}

// NewConfig creates a new configuration instance with default values
// and overrides from environment variables.
func NewConfig() *AppConfig {
	port := getEnvString("SERVER_PORT", "5000")
	return &AppConfig{
		serverPort:         port,
		environment:        getEnvString("ENVIRONMENT", "development"),
		frontendURL:        getEnvString("FRONTEND_URL", "http://localhost:3000"),
		githubClientID:     getEnvString("GITHUB_CLIENT_ID", ""),
		githubClientSecret: getEnvString("GITHUB_CLIENT_SECRET", ""),
		oauthRedirectURL: getEnvString("OAUTH_REDIRECT_URL",
			fmt.Sprintf("http://localhost:%s/auth/github/callback", port)),
		sessionShort:       getEnvDuration("SESSION_SHORT_LIFETIME", "2h"),
		sessionExtended:    getEnvDuration("SESSION_EXTENDED_LIFETIME", "720h"), // 30 days
		searchPageSize:     getEnvInt("SEARCH_PAGE_SIZE", 30),
		searchPageCap:      getEnvInt("SEARCH_PAGE_CAP", 34),
		visitCapacity:      getEnvInt("VISIT_CAPACITY", 50),
		visitRetention:     getEnvDuration("VISIT_RETENTION", "720h"), // 30 days
		rateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		rateLimitPerMinute: getEnvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
		redisEnabled:       getEnvBool("REDIS_ENABLED", false),
		redisAddr:          getEnvString("REDIS_ADDR", "localhost:6379"),
		redisPassword:      getEnvString("REDIS_PASSWORD", ""),
		redisDB:            getEnvInt("REDIS_DB", 0),
	}
}

// GetServerPort returns the server port configuration.
func (c *AppConfig) GetServerPort() string {
	return c.serverPort
}

// GetEnvironment returns the application environment configuration.
func (c *AppConfig) GetEnvironment() string {
	return c.environment
}

// GetFrontendURL returns the client origin for redirects and CORS.
func (c *AppConfig) GetFrontendURL() string {
	return c.frontendURL
}

// IsProduction returns true if the application is running in production environment.
func (c *AppConfig) IsProduction() bool {
	return c.environment == "production"
}

// GetGitHubClientID returns the GitHub OAuth client ID.
func (c *AppConfig) GetGitHubClientID() string {
	return c.githubClientID
}

// GetGitHubClientSecret returns the GitHub OAuth client secret.
func (c *AppConfig) GetGitHubClientSecret() string {
	return c.githubClientSecret
}

// GetOAuthRedirectURL returns the OAuth callback URL.
func (c *AppConfig) GetOAuthRedirectURL() string {
	return c.oauthRedirectURL
}

// GetSessionShortLifetime returns the default session lifetime.
func (c *AppConfig) GetSessionShortLifetime() time.Duration {
	return c.sessionShort
}

// GetSessionExtendedLifetime returns the remembered session lifetime.
func (c *AppConfig) GetSessionExtendedLifetime() time.Duration {
	return c.sessionExtended
}

// GetSearchPageSize returns the upstream search page size.
func (c *AppConfig) GetSearchPageSize() int {
	return c.searchPageSize
}

// GetSearchPageCap returns the upstream result-window page cap.
func (c *AppConfig) GetSearchPageCap() int {
	return c.searchPageCap
}

// GetVisitCapacity returns the per-user visit record bound.
func (c *AppConfig) GetVisitCapacity() int {
	return c.visitCapacity
}

// GetVisitRetention returns the visit record retention window.
func (c *AppConfig) GetVisitRetention() time.Duration {
	return c.visitRetention
}

// GetRateLimitEnabled returns whether request rate limiting is on.
func (c *AppConfig) GetRateLimitEnabled() bool {
	return c.rateLimitEnabled
}

// GetRateLimitRequestsPerMinute returns the per-client request budget.
func (c *AppConfig) GetRateLimitRequestsPerMinute() int {
	return c.rateLimitPerMinute
}

// GetRedisEnabled returns whether the Redis rate-limit backend is on.
func (c *AppConfig) GetRedisEnabled() bool {
	return c.redisEnabled
}

// GetRedisAddr returns the Redis server address.
func (c *AppConfig) GetRedisAddr() string {
	return c.redisAddr
}

// GetRedisPassword returns the Redis password.
func (c *AppConfig) GetRedisPassword() string {
	return c.redisPassword
}

// GetRedisDB returns the Redis database number.
func (c *AppConfig) GetRedisDB() int {
	return c.redisDB
}

// Validate checks if the configuration is valid.
func (c *AppConfig) Validate() error {
	if c.serverPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.environment != "development" && c.environment != "staging" && c.environment != "production" {
		return fmt.Errorf("environment must be one of: development, staging, production")
	}

	if c.githubClientID == "" || c.githubClientSecret == "" {
		return fmt.Errorf("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required")
	}

	if c.sessionShort <= 0 || c.sessionExtended <= 0 {
		return fmt.Errorf("session lifetimes must be positive")
	}

	if c.sessionExtended < c.sessionShort {
		return fmt.Errorf("extended session lifetime must not be shorter than the default")
	}

	if c.visitCapacity <= 0 {
		return fmt.Errorf("visit capacity must be positive")
	}

	if c.searchPageSize <= 0 || c.searchPageCap <= 0 {
		return fmt.Errorf("search pagination settings must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Second
}
