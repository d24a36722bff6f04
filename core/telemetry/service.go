// Package telemetry records append-only vehicle sensor snapshots.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
)

// Service validates and appends telemetry records. Records are immutable
// once written; there is no update path.
type Service struct {
	vehicles store.Vehicles
	records  store.TelemetryRecords
	log      logger.Logger
	now      func() time.Time
}

// NewService wires a telemetry service over the given stores.
func NewService(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		vehicles: s.Vehicles(),
		records:  s.Telemetry(),
		log:      log,
		now:      time.Now,
	}
}

// Record appends one telemetry snapshot. The vehicle must exist.
func (s *Service) Record(ctx context.Context, t model.Telemetry) (model.Telemetry, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if err := t.Validate(); err != nil {
		return model.Telemetry{}, err
	}
	if _, err := s.vehicles.Get(ctx, t.VehicleID); err != nil {
		return model.Telemetry{}, fmt.Errorf("record telemetry: %w", err)
	}
	if err := s.records.Insert(ctx, t); err != nil {
		return model.Telemetry{}, fmt.Errorf("record telemetry: %w", err)
	}
	s.log.Debugf("telemetry %s recorded for vehicle %s", t.ID, t.VehicleID)
	return t, nil
}

// List returns up to limit records for a vehicle, most recent first.
func (s *Service) List(ctx context.Context, vehicleID string, limit int) ([]model.Telemetry, error) {
	if _, err := s.vehicles.Get(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.records.ListByVehicle(ctx, vehicleID, limit)
}
