package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in API responses.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidState      = "INVALID_STATE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotFound          = "RESOURCE_NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
)

// AppError is an error with a stable code and an HTTP status. The code is
// part of the API contract; the wrapped cause is for logs only.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key/value pair surfaced in the response details.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap records the underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError builds an AppError from its parts.
func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// ErrValidation rejects malformed or incomplete input.
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrBadRequest rejects a request that could not be bound or parsed.
func ErrBadRequest(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

// ErrInsufficientStock reports that a movement exceeds what the holder has.
// No partial effect occurred.
func ErrInsufficientStock(message string) *AppError {
	if message == "" {
		message = "insufficient stock for requested quantity"
	}
	return NewAppError(CodeInsufficientStock, message, http.StatusBadRequest)
}

// ErrInvalidState reports an action against a record that has already
// reached a terminal state. Indicates a stale client view.
func ErrInvalidState(message string) *AppError {
	if message == "" {
		message = "operation not allowed in current state"
	}
	return NewAppError(CodeInvalidState, message, http.StatusBadRequest)
}

// ErrUnauthorized reports a missing or unidentified actor.
func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(CodeUnauthorized, message, http.StatusUnauthorized)
}

// ErrNotFound reports a missing resource by kind.
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrNotFoundWithID reports a missing resource and carries its ID.
func ErrNotFoundWithID(resource, id string) *AppError {
	return ErrNotFound(resource).WithDetail("id", id)
}

// ErrInternal reports an unexpected failure. Callers should Wrap the cause.
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// AsAppError extracts an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError normalizes any error to an AppError; unknown errors become
// internal errors with the cause preserved for logging.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrInternal("").Wrap(err)
}
