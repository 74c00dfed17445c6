// Package apierrors is the error taxonomy of the API. Each type carries the
// HTTP status it maps to and the message shown to clients.
package apierrors

import (
	"errors"
	"net/http"
)

// InternalMessage is the only text a client sees for unexpected failures
const InternalMessage = "Internal server error"

// HTTPError is implemented by every error in this package
type HTTPError interface {
	error
	StatusCode() int
	PublicMessage() string
}

type apiError struct {
	status  int
	message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error         { return e.cause }
func (e *apiError) StatusCode() int       { return e.status }
func (e *apiError) PublicMessage() string { return e.message }

// ValidationError is a missing or malformed input (400)
type ValidationError struct{ apiError }

// AuthenticationError is a missing token or bad credentials (401)
type AuthenticationError struct{ apiError }

// AuthorizationError is an invalid token or insufficient role (403)
type AuthorizationError struct{ apiError }

// NotFoundError is an absent referenced entity (404)
type NotFoundError struct{ apiError }

// InternalError is a store failure or unexpected condition (500). Its
// cause is logged, never returned to the client.
type InternalError struct{ apiError }

func NewValidation(message string) *ValidationError {
	return &ValidationError{apiError{status: http.StatusBadRequest, message: message}}
}

func NewAuthentication(message string) *AuthenticationError {
	return &AuthenticationError{apiError{status: http.StatusUnauthorized, message: message}}
}

func NewAuthorization(message string) *AuthorizationError {
	return &AuthorizationError{apiError{status: http.StatusForbidden, message: message}}
}

func NewNotFound(message string) *NotFoundError {
	return &NotFoundError{apiError{status: http.StatusNotFound, message: message}}
}

func NewInternal(cause error) *InternalError {
	return &InternalError{apiError{status: http.StatusInternalServerError, message: InternalMessage, cause: cause}}
}

// Common errors
var (
	ErrCredentialsRequired = NewValidation("Username and password required")
	ErrInvalidCredentials  = NewAuthentication("Invalid credentials")
	ErrTokenRequired       = NewAuthentication("Access token required")
	ErrInvalidToken        = NewAuthorization("Invalid or expired token")
	ErrAgronomistRequired  = NewAuthorization("Agronomist access required")
	ErrPlantNotFound       = NewNotFound("Plant not found")
	ErrAgronomistNotFound  = NewNotFound("Agronomist not found")
	ErrMissingPlantFields  = NewValidation("Missing required fields")
	ErrMissingAdvice       = NewValidation("Plant ID and advice text required")
	ErrMissingAlertFields  = NewValidation("Plant ID and message required")
)

// Resolve maps any error to the status and message sent to the client.
// Errors outside the taxonomy are treated as internal.
func Resolve(err error) (int, string) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode(), httpErr.PublicMessage()
	}
	return http.StatusInternalServerError, InternalMessage
}
