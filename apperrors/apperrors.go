// Package apperrors defines the error taxonomy shared by middlewares and controllers
// and the single place where those errors are turned into HTTP responses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrInternal        = errors.New("internal error")
)

type AppError struct {
	Kind    error  // one of the sentinels above
	Message string // human-readable, returned to the client
	Err     error  // underlying cause, logged but only exposed in debug mode
	Fields  gin.H  // extra response fields, e.g. the offending user
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// With attaches extra fields to the JSON body of the response.
func (e *AppError) With(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = gin.H{}
	}
	e.Fields[key] = value
	return e
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: ErrUnauthenticated, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: ErrForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Kind: ErrValidation, Message: message}
}

// Internal wraps an unexpected storage or runtime failure.
func Internal(message string, err error) *AppError {
	return &AppError{Kind: ErrInternal, Message: message, Err: err}
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond aborts the request with the JSON body for err. Internal failures are
// logged with the request id; their detail only reaches the client in debug mode.
func Respond(c *gin.Context, err error) {
	status := Status(err)

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal("Internal server error", err)
	}

	body := gin.H{"error": appErr.Message}
	for k, v := range appErr.Fields {
		body[k] = v
	}

	if status == http.StatusInternalServerError {
		zap.L().Error(appErr.Message,
			zap.Error(appErr.Err),
			zap.String("request_id", c.GetString("requestID")),
			zap.String("path", c.FullPath()),
		)
		if gin.Mode() == gin.DebugMode && appErr.Err != nil {
			body["details"] = appErr.Err.Error()
		}
	}

	c.AbortWithStatusJSON(status, body)
}
