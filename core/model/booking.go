package model

import (
	"strings"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

// Booking is one maintenance request connecting a vehicle, its owner and a
// service center, optionally assigned to a mechanic and optionally created
// from a prediction.
type Booking struct {
	ID               string        `json:"id"`
	VehicleID        string        `json:"vehicle_id"`
	OwnerID          string        `json:"owner_id"`
	ServiceCenterID  string        `json:"service_center_id"`
	AssignedMechanic string        `json:"assigned_mechanic,omitempty"`
	ServiceType      string        `json:"service_type"`
	ScheduledDate    time.Time     `json:"scheduled_date"`
	Status           BookingStatus `json:"status"`
	EstimatedMinutes int           `json:"estimated_duration,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	CompletionNotes  string        `json:"completion_notes,omitempty"`

	// PredictionID links the booking back to the risk it addresses, when
	// the booking was created from a prediction.
	PredictionID string `json:"prediction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version guards optimistic writes. Incremented by the store on update.
	Version int64 `json:"-"`
}

// Validate checks the field-level contract of a booking record.
func (b Booking) Validate() error {
	if b.VehicleID == "" {
		return apperrors.Validationf("booking vehicle_id is required")
	}
	if b.OwnerID == "" {
		return apperrors.Validationf("booking owner_id is required")
	}
	if b.ServiceCenterID == "" {
		return apperrors.Validationf("booking service_center_id is required")
	}
	if strings.TrimSpace(b.ServiceType) == "" {
		return apperrors.Validationf("booking service_type is required")
	}
	if b.ScheduledDate.IsZero() {
		return apperrors.Validationf("booking scheduled_date is required")
	}
	if !b.Status.Valid() {
		return apperrors.Validationf("unknown booking status %q", string(b.Status))
	}
	if b.EstimatedMinutes < 0 {
		return apperrors.Validationf("estimated_duration must be non-negative")
	}
	return nil
}
