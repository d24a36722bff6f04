// Package prediction consumes failure predictions from the external
// producer pipeline. The core never computes predictions itself; it
// validates, stores and reacts to rows the producer writes.
package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
)

// StatusRecomputer re-derives a vehicle's stored status. Satisfied by the
// vehicle service; split out so this package does not depend on it.
type StatusRecomputer interface {
	RecomputeStatus(ctx context.Context, vehicleID string) (model.Vehicle, error)
}

// Recorder validates and persists incoming prediction rows and triggers
// status recomputation for the affected vehicle.
type Recorder struct {
	vehicles    store.Vehicles
	predictions store.Predictions
	recompute   StatusRecomputer
	log         logger.Logger
	now         func() time.Time
}

// NewRecorder wires a prediction recorder. recompute may be nil, in which
// case ingest does not touch vehicle status (the sweep job catches up).
func NewRecorder(s store.Store, recompute StatusRecomputer, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Recorder{
		vehicles:    s.Vehicles(),
		predictions: s.Predictions(),
		recompute:   recompute,
		log:         log,
		now:         time.Now,
	}
}

// Record stores one producer-supplied prediction. The vehicle must exist;
// probability and confidence outside [0,1] are rejected at this boundary.
func (r *Recorder) Record(ctx context.Context, p model.Prediction) (model.Prediction, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	if err := p.Validate(); err != nil {
		return model.Prediction{}, err
	}
	if _, err := r.vehicles.Get(ctx, p.VehicleID); err != nil {
		return model.Prediction{}, fmt.Errorf("record prediction: %w", err)
	}
	if err := r.predictions.Insert(ctx, p); err != nil {
		return model.Prediction{}, fmt.Errorf("record prediction: %w", err)
	}
	r.log.Infof("prediction %s recorded for vehicle %s (%s, p=%.2f)",
		p.ID, p.VehicleID, p.Component, p.FailureProbability)

	if r.recompute != nil {
		if _, err := r.recompute.RecomputeStatus(ctx, p.VehicleID); err != nil {
			return model.Prediction{}, fmt.Errorf("record prediction: %w", err)
		}
	}
	return p, nil
}

// ListByVehicle returns a vehicle's predictions, optionally only the live
// (unresolved) ones, most recent first.
func (r *Recorder) ListByVehicle(ctx context.Context, vehicleID string, unresolvedOnly bool) ([]model.Prediction, error) {
	if _, err := r.vehicles.Get(ctx, vehicleID); err != nil {
		return nil, err
	}
	return r.predictions.ListByVehicle(ctx, vehicleID, unresolvedOnly)
}
