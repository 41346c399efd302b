package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"gitseek/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorSanitizer provides safe error handling that prevents information disclosure
type ErrorSanitizer struct {
	logger *slog.Logger
}

// NewErrorSanitizer creates a new error sanitizer with structured logging
func NewErrorSanitizer(logger *slog.Logger) *ErrorSanitizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorSanitizer{logger: logger}
}

// SanitizedErrorResponse logs the detailed error server-side with a
// correlation ID and returns a sanitized payload to the client.
func (s *ErrorSanitizer) SanitizedErrorResponse(c *gin.Context, err error) {
	correlationID := s.getOrCreateCorrelationID(c)

	var domainErr *domain.Error
	isDomainError := errors.As(err, &domainErr)

	s.logErrorWithContext(c, err, correlationID, isDomainError, domainErr)

	statusCode, response := s.sanitizeErrorForClient(domainErr, isDomainError, correlationID)
	c.JSON(statusCode, response)
}

// LogError records an error server-side without writing a response body.
// Used by redirect-style handlers where the client gets a Location header
// instead of JSON.
func (s *ErrorSanitizer) LogError(c *gin.Context, err error) {
	correlationID := s.getOrCreateCorrelationID(c)

	var domainErr *domain.Error
	isDomainError := errors.As(err, &domainErr)

	s.logErrorWithContext(c, err, correlationID, isDomainError, domainErr)
}

// getOrCreateCorrelationID gets existing correlation ID from context or creates new one
func (s *ErrorSanitizer) getOrCreateCorrelationID(c *gin.Context) string {
	if id, exists := c.Get("correlation_id"); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}

	if id := c.GetHeader("X-Correlation-ID"); id != "" {
		c.Set("correlation_id", id)
		return id
	}

	correlationID := uuid.New().String()
	c.Set("correlation_id", correlationID)
	c.Header("X-Correlation-ID", correlationID)
	return correlationID
}

// logErrorWithContext logs detailed error information server-side
func (s *ErrorSanitizer) logErrorWithContext(c *gin.Context, err error, correlationID string, isDomainError bool, domainErr *domain.Error) {
	attrs := []slog.Attr{
		slog.String("correlation_id", correlationID),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("remote_addr", c.ClientIP()),
	}

	if session, exists := c.Get("session"); exists {
		if sess, ok := session.(*domain.Session); ok {
			attrs = append(attrs, slog.String("user_id", sess.User.ID))
		}
	}

	if isDomainError {
		attrs = append(attrs,
			slog.String("error_type", string(domainErr.Type)),
			slog.String("error_code", domainErr.Code),
			slog.String("error_message", domainErr.Message),
		)

		if domainErr.Cause != nil {
			attrs = append(attrs, slog.String("underlying_error", domainErr.Cause.Error()))
		}

		if len(domainErr.Details) > 0 {
			for key, value := range domainErr.Details {
				if !isSensitiveField(key) {
					attrs = append(attrs, slog.Any(fmt.Sprintf("detail_%s", key), value))
				}
			}
		}

		logArgs := make([]any, len(attrs))
		for i, attr := range attrs {
			logArgs[i] = attr
		}
		s.logger.ErrorContext(context.Background(), "Domain error occurred", logArgs...)
	} else {
		attrs = append(attrs, slog.String("error", err.Error()))
		logArgs := make([]any, len(attrs))
		for i, attr := range attrs {
			logArgs[i] = attr
		}
		s.logger.ErrorContext(context.Background(), "Unexpected system error occurred", logArgs...)
	}
}

// sanitizeErrorForClient returns safe error response for client consumption
func (s *ErrorSanitizer) sanitizeErrorForClient(domainErr *domain.Error, isDomainError bool, correlationID string) (int, gin.H) {
	if isDomainError {
		statusCode := statusCodeForErrorType(domainErr.Type)

		errBody := map[string]interface{}{
			"type": domainErr.Type,
			"code": domainErr.Code,
		}

		switch domainErr.Type {
		case domain.ValidationError:
			// Validation messages are user-facing and safe to surface.
			errBody["message"] = domainErr.Message
			if domainErr.Details != nil {
				if field, ok := domainErr.Details["field"]; ok {
					errBody["field"] = field
				}
			}
		case domain.NotFoundError:
			errBody["message"] = "Requested resource not found"
		case domain.AuthenticationError:
			errBody["message"] = "Authentication failed"
		case domain.AuthorizationError:
			errBody["message"] = "Access denied"
		case domain.ExternalServiceError:
			errBody["message"] = "GitHub is temporarily unavailable"
		case domain.StorageError:
			errBody["message"] = "A storage error occurred while processing your request"
		default:
			errBody["message"] = "An error occurred while processing your request"
		}

		return statusCode, gin.H{
			"success":        false,
			"correlation_id": correlationID,
			"error":          errBody,
		}
	}

	return http.StatusInternalServerError, gin.H{
		"success":        false,
		"correlation_id": correlationID,
		"error": map[string]interface{}{
			"type":    "INTERNAL_ERROR",
			"code":    "SYSTEM_ERROR",
			"message": "An unexpected error occurred. Please try again later.",
		},
	}
}

// statusCodeForErrorType maps domain error types to HTTP status codes
func statusCodeForErrorType(errorType domain.ErrorType) int {
	switch errorType {
	case domain.ValidationError:
		return http.StatusBadRequest
	case domain.NotFoundError:
		return http.StatusNotFound
	case domain.AuthenticationError:
		return http.StatusUnauthorized
	case domain.AuthorizationError:
		return http.StatusForbidden
	case domain.ExternalServiceError:
		return http.StatusBadGateway
	case domain.StorageError, domain.InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// isSensitiveField checks if a field contains sensitive information that shouldn't be logged
func isSensitiveField(field string) bool {
	sensitiveFields := map[string]bool{
		"password":      true,
		"token":         true,
		"secret":        true,
		"key":           true,
		"authorization": true,
		"cookie":        true,
		"session":       true,
		"access_token":  true,
		"client_secret": true,
		"api_key":       true,
	}
	return sensitiveFields[field]
}
