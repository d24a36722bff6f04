package model

import (
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

// Prediction is one failure forecast for a vehicle component, produced by
// the external prediction pipeline. Rows are immutable; new evidence yields
// a new row. Resolved marks predictions superseded by a completed
// corrective booking.
type Prediction struct {
	ID                  string        `json:"id"`
	VehicleID           string        `json:"vehicle_id"`
	Component           ComponentType `json:"component"`
	FailureProbability  float64       `json:"failure_probability"`
	ConfidenceScore     float64       `json:"confidence_score"`
	PredictedFailure    *time.Time    `json:"predicted_failure_date,omitempty"`
	IsCritical          bool          `json:"is_critical"`
	Recommendation      string        `json:"recommendation,omitempty"`
	ContributingFactors JSONValue     `json:"contributing_factors,omitempty"`
	Resolved            bool          `json:"resolved"`
	CreatedAt           time.Time     `json:"created_at"`
}

// Validate checks the field-level contract of a prediction. Probabilities
// outside [0,1] are rejected, never clamped.
func (p Prediction) Validate() error {
	if p.VehicleID == "" {
		return apperrors.Validationf("prediction vehicle_id is required")
	}
	if !p.Component.Valid() {
		return apperrors.Validationf("unknown component type %q", string(p.Component))
	}
	if p.FailureProbability < 0 || p.FailureProbability > 1 {
		return apperrors.Validationf("failure_probability %v outside [0,1]", p.FailureProbability)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
		return apperrors.Validationf("confidence_score %v outside [0,1]", p.ConfidenceScore)
	}
	return nil
}
