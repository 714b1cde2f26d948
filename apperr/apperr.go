// Package apperr defines the error taxonomy shared by the booking and
// approval handlers, and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInterval   = errors.New("invalid time interval")
	ErrConflictDetected  = errors.New("resource is already booked for this time slot")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrAlreadyMember     = errors.New("already a member of this club")
	ErrNotMember         = errors.New("not a member of this club")
	ErrEventFull         = errors.New("event is full")
	ErrEventNotOpen      = errors.New("event is not open for registration")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Status maps a taxonomy error to the HTTP status the handlers return.
// Unknown errors are treated as store failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInterval):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflictDetected):
		return http.StatusConflict
	case errors.Is(err, ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrEventFull),
		errors.Is(err, ErrEventNotOpen):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
