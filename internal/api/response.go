// Package api provides the HTTP handlers and shared response helpers.
//
// All handlers report failures through SanitizedErrorResponse so that
// detailed errors stay in the server logs (keyed by correlation ID) and
// clients only ever see sanitized payloads.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	defaultSanitizer *ErrorSanitizer
	sanitizerOnce    sync.Once
)

// getDefaultSanitizer creates a singleton error sanitizer with structured logging
func getDefaultSanitizer() *ErrorSanitizer {
	sanitizerOnce.Do(func() {
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		defaultSanitizer = NewErrorSanitizer(logger)
	})
	return defaultSanitizer
}

// SanitizedErrorResponse handles errors with sanitization and structured logging.
func SanitizedErrorResponse(c *gin.Context, err error) {
	getDefaultSanitizer().SanitizedErrorResponse(c, err)
}

// SuccessResponse returns a standardized success response.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
