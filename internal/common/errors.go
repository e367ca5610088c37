package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("duplicate key")
	ErrProvider     = errors.New("extraction provider failed")
	ErrUnavailable  = errors.New("service unavailable")
)

// Wire codes carried in error envelopes.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInvalidID  = "INVALID_ID"
	CodeNotFound   = "NOT_FOUND"
	CodeDuplicate  = "DUPLICATE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
	CodeConfig     = "CONFIG_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, ErrNotFound)
}

// Validation wraps cause so that errors.Is(err, ErrValidation) holds.
func Validation(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrValidation
	} else {
		cause = fmt.Errorf("%w: %w", ErrValidation, cause)
	}
	return NewAppError(CodeValidation, message, cause)
}

func InvalidID() *AppError {
	return NewAppError(CodeInvalidID, "Invalid ID format", ErrInvalidInput)
}

func Conflict(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrConflict
	} else {
		cause = fmt.Errorf("%w: %w", ErrConflict, cause)
	}
	return NewAppError(CodeDuplicate, message, cause)
}


// HTTPStatus maps an error onto the HTTP status it should surface as.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the wire code for err, INTERNAL_ERROR when it has none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeDuplicate
	}
	return CodeInternal
}

// PublicMessage is the human-readable message of err. Unknown errors are
// masked when production is set.
func PublicMessage(err error, production bool) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		return appErr.Message
	}
	if production {
		return "Internal server error"
	}
	return err.Error()
}
