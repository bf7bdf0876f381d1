// Package apperror defines the error taxonomy shared by services and HTTP
// handlers. Services return *AppError values; handlers map them to a status
// code and a client-safe body without leaking internals.
package apperror

import (
	"errors"
	"net/http"
)

// Error codes returned to clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeWrongPassword      = "WRONG_PASSWORD"
	CodeInvalidResetToken  = "INVALID_OR_EXPIRED_TOKEN"
	CodeNotificationFailed = "NOTIFICATION_FAILED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError carries an HTTP status, a stable machine code and a client-safe
// message. Err is the wrapped cause, logged server-side only.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError with no wrapped cause.
func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// Wrap creates an AppError around an underlying cause.
func Wrap(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func Conflict(message string) *AppError {
	return New(http.StatusBadRequest, CodeConflict, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func WrongPassword(message string) *AppError {
	return New(http.StatusBadRequest, CodeWrongPassword, message)
}

func InvalidResetToken(message string) *AppError {
	return New(http.StatusBadRequest, CodeInvalidResetToken, message)
}

func NotificationFailed(err error) *AppError {
	return Wrap(http.StatusInternalServerError, CodeNotificationFailed, "could not send notification email", err)
}

func StoreUnavailable(err error) *AppError {
	return Wrap(http.StatusInternalServerError, CodeStoreUnavailable, "storage is unavailable", err)
}

func Internal(err error) *AppError {
	return Wrap(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// From extracts an *AppError from err, or wraps it as an internal error.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
