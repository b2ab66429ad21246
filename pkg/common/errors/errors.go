package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/duynguyendang/geoqa/internal/manager"
	"github.com/duynguyendang/geoqa/pkg/query"
)

// Common sentinel errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// AppError represents an application-specific error with an HTTP status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapError maps an error to an AppError with an appropriate HTTP status code.
// Unrecognized questions and empty results are answers, not errors, and are
// never passed here.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, query.ErrInvalidArgument):
		return NewAppError(http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, manager.ErrStoreUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "Ontology not loaded", err)
	}

	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}
