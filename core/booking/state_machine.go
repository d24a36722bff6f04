// Package booking implements the maintenance booking lifecycle: creation,
// the status state machine and completion side effects.
package booking

import (
	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
)

// transitions is the directed graph of allowed status changes. Terminal
// states have no outgoing edges.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:    {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed:  {model.BookingInProgress, model.BookingCancelled},
	model.BookingInProgress: {model.BookingCompleted, model.BookingCancelled},
	model.BookingCompleted:  {},
	model.BookingCancelled:  {},
}

// CanTransition reports whether from -> to is an edge of the state machine.
// Self-transitions are not edges.
func CanTransition(from, to model.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// applyTransition validates and applies a status change in place. A
// non-edge yields an invalid-transition error naming both states; the
// status is never coerced to a nearby valid state.
func applyTransition(b *model.Booking, to model.BookingStatus) error {
	if !to.Valid() {
		return apperrors.Validationf("unknown booking status %q", string(to))
	}
	if !CanTransition(b.Status, to) {
		return apperrors.NewTransitionError(string(b.Status), string(to))
	}
	b.Status = to
	return nil
}
