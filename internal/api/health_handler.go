package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles liveness endpoints.
type HealthHandler struct {
	startedAt time.Time
	version   string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
		version:   version,
	}
}

// RegisterRoutes registers health check routes.
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/ping", h.Ping)
}

// Health reports process liveness and basic runtime information.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"version":    h.version,
		"uptime":     time.Since(h.startedAt).String(),
		"goroutines": runtime.NumGoroutine(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// Ping is a minimal reachability probe.
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
