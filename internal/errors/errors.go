// Package errors defines the typed error taxonomy for the service layer.
// Every domain operation either completes or returns a *ServiceError;
// the HTTP layer maps codes to status codes, callers present Message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a service error.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal"
)

// ServiceError is the error type returned by domain operations.
type ServiceError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// WithDetails attaches a key/value pair to the error and returns it.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus maps the error code to an HTTP status code.
func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NotFound reports a missing entity.
func NotFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: message}
}

// InvalidInput reports a validation failure caught before any remote call.
func InvalidInput(message string) *ServiceError {
	return &ServiceError{Code: CodeInvalidInput, Message: message}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: message}
}

// Forbidden reports an identity lacking the required permission.
func Forbidden(message string) *ServiceError {
	return &ServiceError{Code: CodeForbidden, Message: message}
}

// Conflict reports a state conflict, such as merging an already merged table.
func Conflict(message string) *ServiceError {
	return &ServiceError{Code: CodeConflict, Message: message}
}

// InvalidToken wraps a token validation failure.
func InvalidToken(cause error) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: "invalid token", cause: cause}
}

// Remote wraps a failure from the hosted backend. The Supabase error body
// is opaque to callers; it is carried as the cause for logging.
func Remote(message string, cause error) *ServiceError {
	return &ServiceError{Code: CodeUnavailable, Message: message, cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: message, cause: cause}
}

// Wrap converts any error into a *ServiceError, passing through errors
// that already carry a code.
func Wrap(err error, message string) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return Internal(message, err)
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == CodeNotFound
}

// IsConflict reports whether err carries CodeConflict.
func IsConflict(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == CodeConflict
}

// IsUnavailable reports whether err carries CodeUnavailable.
func IsUnavailable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == CodeUnavailable
}

// IsForbidden reports whether err carries CodeForbidden.
func IsForbidden(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == CodeForbidden
}
