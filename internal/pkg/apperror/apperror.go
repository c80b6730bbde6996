package apperror

import (
	"errors"
	"net/http"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404, 409)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound, Conflict, Validation and Forbidden build errors of the matching kind.
func NotFound(message string) *AppError   { return New(http.StatusNotFound, message) }
func Conflict(message string) *AppError   { return New(http.StatusConflict, message) }
func Validation(message string) *AppError { return New(http.StatusBadRequest, message) }
func Forbidden(message string) *AppError  { return New(http.StatusForbidden, message) }

// CodeOf returns the status code carried by err, or 500 when err is not an AppError.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a NotFound AppError.
func IsNotFound(err error) bool { return err != nil && CodeOf(err) == http.StatusNotFound }

// IsConflict reports whether err is a Conflict AppError.
func IsConflict(err error) bool { return err != nil && CodeOf(err) == http.StatusConflict }

// IsValidation reports whether err is a ValidationError AppError.
func IsValidation(err error) bool { return err != nil && CodeOf(err) == http.StatusBadRequest }
