// Package main provides the entry point for the gitseek API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitseek/internal/api"
	"gitseek/internal/api/middleware"
	"gitseek/internal/config"
	"gitseek/internal/repository"
	"gitseek/internal/services"

	"github.com/gin-gonic/gin"
)

const serverVersion = "1.0.0"

func main() {
	ctx := context.Background()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	loader := config.NewEnvLoader(".")
	if err := loader.LoadEnvFiles(os.Getenv("ENVIRONMENT")); err != nil {
		log.Printf("Env file loading: %v", err)
	}

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	router, rateLimitManager, cleanupStop, err := setupRouter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}
	if rateLimitManager != nil {
		defer rateLimitManager.Shutdown()
	}
	defer cleanupStop()

	server := &http.Server{
		Addr:         ":" + cfg.GetServerPort(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	select {
	case <-sigChan:
		log.Println("Shutdown signal received")
	case <-ctx.Done():
		log.Println("Context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// setupRouter wires the stores, services, middleware, and routes. The
// returned stop function ends the background expiry sweeper.
func setupRouter(ctx context.Context, cfg *config.AppConfig) (*gin.Engine, *middleware.RateLimitManager, func(), error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	states := repository.NewMemoryOAuthStateStore()
	sessions := repository.NewMemorySessionStore()
	visits := repository.NewMemoryVisitStore(cfg.GetVisitCapacity(), cfg.GetVisitRetention())
	consent := repository.NewMemoryConsentTracker()
	history := repository.NewMemorySearchHistoryStore(repository.DefaultSearchHistoryLimit)

	authService := services.NewAuthService(
		cfg.GetGitHubClientID(),
		cfg.GetGitHubClientSecret(),
		cfg.GetOAuthRedirectURL(),
		services.SessionLifetimes{
			Short:    cfg.GetSessionShortLifetime(),
			Extended: cfg.GetSessionExtendedLifetime(),
		},
		states, sessions, visits, consent, history,
	)
	searchService := services.NewSearchService(cfg.GetSearchPageSize(), cfg.GetSearchPageCap(), history)

	sessionMW := middleware.NewSessionMiddleware(authService, cfg.IsProduction())

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(middleware.LoggingConfig{
		SkipPaths: []string{"/health", "/ping"},
	}))
	router.Use(middleware.RecoveryMiddleware(middleware.RecoveryConfig{
		PrintStack: !cfg.IsProduction(),
	}))
	router.Use(middleware.CORSMiddleware([]string{cfg.GetFrontendURL()}))

	var rateLimitManager *middleware.RateLimitManager
	if cfg.GetRateLimitEnabled() {
		rateLimitMW, manager, err := middleware.RateLimitMiddleware(ctx, middleware.RateLimitConfig{
			RequestsPerMinute: cfg.GetRateLimitRequestsPerMinute(),
			UseRedis:          cfg.GetRedisEnabled(),
			RedisAddr:         cfg.GetRedisAddr(),
			RedisPassword:     cfg.GetRedisPassword(),
			RedisDB:           cfg.GetRedisDB(),
			KeyGenerator: func(c *gin.Context) string {
				return c.ClientIP()
			},
		})
		if err != nil {
			return nil, nil, nil, err
		}
		rateLimitManager = manager
		router.Use(rateLimitMW)
	}

	api.NewAuthHandler(authService, sessionMW, cfg.GetFrontendURL()).RegisterRoutes(router)
	api.NewSearchHandler(searchService, sessionMW).RegisterRoutes(router)
	api.NewVisitHandler(visits, sessionMW).RegisterRoutes(router)
	api.NewHealthHandler(serverVersion).RegisterRoutes(router)

	stop := startExpirySweeper(ctx, sessions, states)
	return router, rateLimitManager, stop, nil
}

// startExpirySweeper prunes expired sessions and OAuth states in the
// background so abandoned logins do not accumulate.
func startExpirySweeper(ctx context.Context, sessions repository.SessionStore, states repository.OAuthStateStore) func() {
	sweepCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if err := sessions.DeleteExpired(sweepCtx); err != nil {
					log.Printf("Session sweep error: %v", err)
				}
				if err := states.DeleteExpired(sweepCtx); err != nil {
					log.Printf("OAuth state sweep error: %v", err)
				}
			}
		}
	}()

	return cancel
}
