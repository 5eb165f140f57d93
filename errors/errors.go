package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrMissingToken       = fmt.Errorf("authorization token is missing")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrNotFound           = fmt.Errorf("not found")
	ErrForbidden          = fmt.Errorf("not authorized for this resource")
	ErrValidation         = fmt.Errorf("validation failed")
	ErrSlowConsumer       = fmt.Errorf("connection send buffer is full")
	ErrConnectionClosed   = fmt.Errorf("connection is closed")

	// ErrRelayNotReady signals a startup-ordering bug: a request handler
	// tried to trigger a notification before the relay was constructed.
	ErrRelayNotReady = fmt.Errorf("notification relay is not initialized")
)

// MapToHTTPStatus translates domain errors into HTTP status codes at the REST edge.
// Unknown errors default to 500 so internals are never leaked to clients.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
