// Package health derives vehicle health status from failure predictions and
// ranks prediction signals for display and alerting. All functions are pure
// over the slices they are given.
package health

import (
	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
)

// Probability thresholds for the three-state status.
const (
	CriticalThreshold = 0.75
	WarningThreshold  = 0.4
)

// DeriveStatus computes the health status for a vehicle from its live
// predictions. Precedence: critical if any live prediction is flagged
// critical or has probability >= CriticalThreshold, else warning if any
// reaches WarningThreshold, else healthy. Resolved predictions are ignored.
// An empty input yields healthy. Probabilities outside [0,1] are rejected.
func DeriveStatus(preds []model.Prediction) (model.VehicleStatus, error) {
	// Validate the whole slice up front so a malformed prediction errors
	// even when an earlier one already decides the status.
	for _, p := range preds {
		if p.FailureProbability < 0 || p.FailureProbability > 1 {
			return "", apperrors.Validationf("failure_probability %v outside [0,1]", p.FailureProbability)
		}
	}
	status := model.StatusHealthy
	for _, p := range preds {
		if p.Resolved {
			continue
		}
		if p.IsCritical || p.FailureProbability >= CriticalThreshold {
			return model.StatusCritical, nil
		}
		if p.FailureProbability >= WarningThreshold {
			status = model.StatusWarning
		}
	}
	return status, nil
}
