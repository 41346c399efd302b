package middleware

import (
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
)

// LoggingConfig holds configuration for the logging middleware.
type LoggingConfig struct {
	Output     io.Writer
	TimeFormat string
	SkipPaths  []string
}

// LoggingMiddleware returns a logging middleware with custom configuration.
func LoggingMiddleware(config LoggingConfig) gin.HandlerFunc {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	if config.TimeFormat == "" {
		config.TimeFormat = "2006/01/02 - 15:04:05"
	}

	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			for _, path := range config.SkipPaths {
				if param.Path == path {
					return ""
				}
			}

			requestID := ""
			if param.Keys != nil {
				if id, exists := param.Keys[string(RequestIDKey)]; exists {
					if idStr, ok := id.(string); ok {
						requestID = fmt.Sprintf(" | ReqID: %s", idStr)
					}
				}
			}

			return fmt.Sprintf("[API] %v | %3d | %13v | %15s | %-7s %#v%s\n%s",
				param.TimeStamp.Format(config.TimeFormat),
				param.StatusCode,
				param.Latency,
				param.ClientIP,
				param.Method,
				param.Path,
				requestID,
				param.ErrorMessage,
			)
		},
		Output:    config.Output,
		SkipPaths: config.SkipPaths,
	})
}

// DefaultLoggingMiddleware returns a logging middleware with sensible defaults.
func DefaultLoggingMiddleware() gin.HandlerFunc {
	return LoggingMiddleware(LoggingConfig{
		Output: os.Stdout,
		SkipPaths: []string{
			"/health",
			"/ping",
		},
		TimeFormat: "2006/01/02 - 15:04:05",
	})
}
