package model

import (
	"strings"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

// RCAReport is a post-service root cause analysis tied to a completed
// booking. Editable only by its creator.
type RCAReport struct {
	ID                 string        `json:"id"`
	BookingID          string        `json:"booking_id"`
	VehicleID          string        `json:"vehicle_id,omitempty"`
	Component          ComponentType `json:"component,omitempty"`
	FailureDescription string        `json:"failure_description"`
	RootCause          string        `json:"root_cause,omitempty"`
	CAPASuggestions    JSONValue     `json:"capa_suggestions,omitempty"`
	CreatedBy          string        `json:"created_by"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Version int64 `json:"-"`
}

// Validate checks the field-level contract of an RCA report.
func (r RCAReport) Validate() error {
	if r.BookingID == "" {
		return apperrors.Validationf("rca report booking_id is required")
	}
	if strings.TrimSpace(r.FailureDescription) == "" {
		return apperrors.Validationf("rca report failure_description is required")
	}
	if r.Component != "" && !r.Component.Valid() {
		return apperrors.Validationf("unknown component type %q", string(r.Component))
	}
	return nil
}
