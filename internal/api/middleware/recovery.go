package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// PrintStack determines whether to print stack trace to logs.
	PrintStack bool
}

// RecoveryMiddleware returns a panic recovery middleware with custom configuration.
func RecoveryMiddleware(config RecoveryConfig) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := GetRequestID(c)

		if config.PrintStack {
			fmt.Printf("[PANIC RECOVERY] Request ID: %s\nPanic: %v\nStack:\n%s\n",
				requestID, recovered, debug.Stack())
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": map[string]interface{}{
				"type":    "INTERNAL_ERROR",
				"code":    "PANIC_RECOVERED",
				"message": "An unexpected error occurred. Please try again later.",
			},
		})
		c.Abort()
	})
}

// DefaultRecoveryMiddleware returns a recovery middleware with sensible defaults.
func DefaultRecoveryMiddleware() gin.HandlerFunc {
	return RecoveryMiddleware(RecoveryConfig{PrintStack: true})
}
