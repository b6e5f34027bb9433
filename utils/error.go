package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies a failed service operation. Handlers map kinds to
// HTTP statuses; clients use the kind to decide whether a retry is safe.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindInvalidState ErrorKind = "invalid_state"
	KindInvalidInput ErrorKind = "invalid_input"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

// ServiceError carries an error kind alongside the caller-facing message.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NotFoundf builds a not-found ServiceError.
func NotFoundf(format string, args ...any) error {
	return &ServiceError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorizedf builds an unauthorized ServiceError.
func Unauthorizedf(format string, args ...any) error {
	return &ServiceError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds a forbidden ServiceError.
func Forbiddenf(format string, args ...any) error {
	return &ServiceError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidStatef builds an invalid-state ServiceError.
func InvalidStatef(format string, args ...any) error {
	return &ServiceError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds an invalid-input ServiceError.
func InvalidInputf(format string, args ...any) error {
	return &ServiceError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict ServiceError.
func Conflictf(format string, args ...any) error {
	return &ServiceError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps an unexpected error with a caller-safe message.
func Internalf(err error, format string, args ...any) error {
	return &ServiceError{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the error kind, defaulting to internal.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response with an explicit status.
func JSONError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// JSONServiceError maps a service error onto the wire: known kinds keep
// their message, anything else is logged and masked as a 500.
func JSONServiceError(c *gin.Context, err error) {
	var se *ServiceError
	if !errors.As(err, &se) || se.Kind == KindInternal {
		GetLogger().Error("Internal service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(statusForKind(se.Kind), ErrorResponse{Error: se.Message, Kind: string(se.Kind)})
}
