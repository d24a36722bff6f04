// Package store defines the persistence collaborator contracts for the
// fleet health model. Implementations must report not-found distinctly from
// empty results and apply versioned updates atomically per entity.
package store

import (
	"context"

	"github.com/opfleet/fleethealth/core/model"
)

// Vehicles persists vehicle records. Insert enforces VIN uniqueness,
// surfaced as a validation error. Update is optimistic: it succeeds only
// when the stored version matches the version carried by the record, and
// increments it; a mismatch yields a concurrent-modification error.
type Vehicles interface {
	Insert(ctx context.Context, v model.Vehicle) error
	Get(ctx context.Context, id string) (model.Vehicle, error)
	GetByVIN(ctx context.Context, vin string) (model.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Vehicle, error)
	ListAll(ctx context.Context) ([]model.Vehicle, error)
	Update(ctx context.Context, v model.Vehicle) (model.Vehicle, error)
}

// Predictions persists prediction rows. Rows are immutable except for the
// resolved marker set when a corrective booking completes.
type Predictions interface {
	Insert(ctx context.Context, p model.Prediction) error
	Get(ctx context.Context, id string) (model.Prediction, error)
	// ListByVehicle returns predictions for one vehicle, most recent first.
	// When unresolvedOnly is set, superseded predictions are skipped.
	ListByVehicle(ctx context.Context, vehicleID string, unresolvedOnly bool) ([]model.Prediction, error)
	// Resolve marks all unresolved predictions for the vehicle's component
	// as superseded and returns how many rows changed.
	Resolve(ctx context.Context, vehicleID string, component model.ComponentType) (int, error)
}

// Bookings persists booking records with optimistic versioned updates.
type Bookings interface {
	Insert(ctx context.Context, b model.Booking) error
	Get(ctx context.Context, id string) (model.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error)
	ListByServiceCenter(ctx context.Context, centerID string) ([]model.Booking, error)
	Update(ctx context.Context, b model.Booking) (model.Booking, error)
}

// TelemetryRecords persists append-only telemetry snapshots.
type TelemetryRecords interface {
	Insert(ctx context.Context, t model.Telemetry) error
	// ListByVehicle returns up to limit records, most recent first.
	// limit <= 0 means no limit.
	ListByVehicle(ctx context.Context, vehicleID string, limit int) ([]model.Telemetry, error)
}

// RCAReports persists root cause analysis reports.
type RCAReports interface {
	Insert(ctx context.Context, r model.RCAReport) error
	Get(ctx context.Context, id string) (model.RCAReport, error)
	ListByBooking(ctx context.Context, bookingID string) ([]model.RCAReport, error)
	Update(ctx context.Context, r model.RCAReport) (model.RCAReport, error)
}

// ServiceCenters persists the service center registry.
type ServiceCenters interface {
	Insert(ctx context.Context, c model.ServiceCenter) error
	Get(ctx context.Context, id string) (model.ServiceCenter, error)
	List(ctx context.Context) ([]model.ServiceCenter, error)
}

// Profiles reads identity profiles. Profiles are created by the identity
// collaborator; the core only consumes them.
type Profiles interface {
	Insert(ctx context.Context, p model.Profile) error
	Get(ctx context.Context, id string) (model.Profile, error)
}

// Store bundles all entity stores behind one persistence backend.
type Store interface {
	Vehicles() Vehicles
	Predictions() Predictions
	Bookings() Bookings
	Telemetry() TelemetryRecords
	RCAReports() RCAReports
	ServiceCenters() ServiceCenters
	Profiles() Profiles
}
