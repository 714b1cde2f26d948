// Package workflow holds the approval state machines for events and bookings:
// which status transitions are legal and which actor may take each edge.
package workflow

import (
	"campium/apperr"
	"campium/models"
)

type Kind string

const (
	KindEvent   Kind = "event"
	KindBooking Kind = "booking"
)

// Actor is the identity a transition runs as. Owner means the actor organizes
// the event or created the booking being transitioned.
type Actor struct {
	UserID string
	Role   string
	Owner  bool
}

var eventTransitions = map[string][]string{
	models.EventDraft:    {models.EventPending},
	models.EventPending:  {models.EventApproved, models.EventRejected},
	models.EventApproved: {models.EventCompleted, models.EventCancelled},
	// rejected, completed, cancelled are terminal
}

var bookingTransitions = map[string][]string{
	models.BookingPending:  {models.BookingApproved, models.BookingRejected, models.BookingCancelled},
	models.BookingApproved: {models.BookingCompleted, models.BookingCancelled},
	// rejected, completed, cancelled are terminal
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(kind Kind, from, to string) bool {
	var table map[string][]string
	switch kind {
	case KindEvent:
		table = eventTransitions
	case KindBooking:
		table = bookingTransitions
	default:
		return false
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check validates that the transition is legal and that the actor may take it.
// Legality is checked before permission so a terminal state always reports
// ErrIllegalTransition regardless of who asks.
func Check(kind Kind, from, to string, actor Actor) error {
	if !CanTransition(kind, from, to) {
		return apperr.ErrIllegalTransition
	}
	if !allowed(kind, from, to, actor) {
		return apperr.ErrForbidden
	}
	return nil
}

func allowed(kind Kind, from, to string, actor Actor) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}

	switch kind {
	case KindEvent:
		switch {
		case from == models.EventDraft && to == models.EventPending:
			// submission: the organizer of the event
			return actor.Owner
		case from == models.EventApproved:
			// completion/cancellation: the organizer of the event
			return actor.Owner
		default:
			// pending -> approved/rejected is admin only
			return false
		}
	case KindBooking:
		// owners may cancel their own booking at any legal point;
		// approval, rejection and completion are admin only
		return to == models.BookingCancelled && actor.Owner
	}
	return false
}
