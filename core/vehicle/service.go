// Package vehicle implements vehicle registration and health bookkeeping:
// VIN rules, owner-scoped listing, status recomputation and the service
// record updates triggered by booking completion.
package vehicle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/fleet"
	"github.com/opfleet/fleethealth/core/health"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
	"github.com/opfleet/fleethealth/internal/eventbus"
)

// StatusChangedEvent is published when a recomputation changes a vehicle's
// stored status.
type StatusChangedEvent struct {
	VehicleID string
	From      model.VehicleStatus
	To        model.VehicleStatus
}

// Service implements vehicle workflows over the persistence collaborator.
type Service struct {
	vehicles    store.Vehicles
	predictions store.Predictions

	statusChanges *eventbus.Bus[StatusChangedEvent]
	log           logger.Logger
	now           func() time.Time
}

// NewService wires a vehicle service over the given stores.
func NewService(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		vehicles:      s.Vehicles(),
		predictions:   s.Predictions(),
		statusChanges: eventbus.New[StatusChangedEvent](),
		log:           log,
		now:           time.Now,
	}
}

// StatusChanges exposes the status change event stream.
func (s *Service) StatusChanges() <-chan StatusChangedEvent { return s.statusChanges.Subscribe() }

// Close shuts down the event stream.
func (s *Service) Close() { s.statusChanges.Close() }

// RegisterInput carries the owner-declared fields for a new vehicle.
type RegisterInput struct {
	OwnerID      string
	Make         string
	Model        string
	Year         int
	VIN          string
	LicensePlate string
	Mileage      int
}

// Register creates a vehicle with the declared mileage and a healthy
// default status. The VIN is uppercase-normalized and must be unique
// across the system; a duplicate surfaces as a validation error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.Vehicle, error) {
	v := model.Vehicle{
		ID:           uuid.NewString(),
		OwnerID:      strings.TrimSpace(in.OwnerID),
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		VIN:          model.NormalizeVIN(in.VIN),
		LicensePlate: strings.ToUpper(strings.TrimSpace(in.LicensePlate)),
		Mileage:      in.Mileage,
		Status:       model.StatusHealthy,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := v.Validate(); err != nil {
		return model.Vehicle{}, err
	}
	if _, err := s.vehicles.GetByVIN(ctx, v.VIN); err == nil {
		return model.Vehicle{}, apperrors.Validationf("vin %s is already registered", v.VIN)
	} else if !apperrors.IsNotFound(err) {
		return model.Vehicle{}, fmt.Errorf("register vehicle: %w", err)
	}
	if err := s.vehicles.Insert(ctx, v); err != nil {
		return model.Vehicle{}, fmt.Errorf("register vehicle: %w", err)
	}
	s.log.Infof("vehicle %s registered (vin %s)", v.ID, v.VIN)
	return v, nil
}

// Get returns one vehicle by id.
func (s *Service) Get(ctx context.Context, id string) (model.Vehicle, error) {
	return s.vehicles.Get(ctx, id)
}

// ListByOwner returns an owner's vehicles, most recently registered first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.Vehicle, error) {
	return s.vehicles.ListByOwner(ctx, ownerID)
}

// FleetSummary aggregates status counts over an owner's fleet.
func (s *Service) FleetSummary(ctx context.Context, ownerID string) (fleet.Summary, error) {
	vehicles, err := s.vehicles.ListByOwner(ctx, ownerID)
	if err != nil {
		return fleet.Summary{}, fmt.Errorf("fleet summary: %w", err)
	}
	return fleet.Aggregate(vehicles), nil
}

// TopPredictions returns the ranked live predictions surfaced for a
// vehicle's detail view and alerting.
func (s *Service) TopPredictions(ctx context.Context, vehicleID string) ([]model.Prediction, error) {
	if _, err := s.vehicles.Get(ctx, vehicleID); err != nil {
		return nil, err
	}
	preds, err := s.predictions.ListByVehicle(ctx, vehicleID, true)
	if err != nil {
		return nil, fmt.Errorf("top predictions: %w", err)
	}
	return health.RankPredictions(preds), nil
}

// UpdateMileage records a new odometer reading.
func (s *Service) UpdateMileage(ctx context.Context, id string, mileage int) (model.Vehicle, error) {
	if mileage < 0 {
		return model.Vehicle{}, apperrors.Validationf("mileage must be non-negative, got %d", mileage)
	}
	v, err := s.vehicles.Get(ctx, id)
	if err != nil {
		return model.Vehicle{}, err
	}
	v.Mileage = mileage
	v.UpdatedAt = s.now()
	return s.vehicles.Update(ctx, v)
}

// RecomputeStatus re-derives the stored status from the vehicle's live
// predictions. Triggered on prediction ingest and booking completion, and
// by the periodic sweep as a backstop.
func (s *Service) RecomputeStatus(ctx context.Context, id string) (model.Vehicle, error) {
	v, err := s.vehicles.Get(ctx, id)
	if err != nil {
		return model.Vehicle{}, err
	}
	preds, err := s.predictions.ListByVehicle(ctx, id, true)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("recompute status: %w", err)
	}
	derived, err := health.DeriveStatus(preds)
	if err != nil {
		return model.Vehicle{}, err
	}
	if derived == v.Status {
		return v, nil
	}
	from := v.Status
	v.Status = derived
	v.UpdatedAt = s.now()
	updated, err := s.vehicles.Update(ctx, v)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("recompute status: %w", err)
	}
	s.log.Infof("vehicle %s status %s -> %s", id, from, derived)
	s.statusChanges.Publish(StatusChangedEvent{VehicleID: id, From: from, To: derived})
	return updated, nil
}

// OnBookingCompleted updates the vehicle's service record after a
// completed booking: stamps last_service_date, supersedes the predictions
// the service addressed and re-derives the status. Wired as a booking
// completion hook.
func (s *Service) OnBookingCompleted(ctx context.Context, b model.Booking) error {
	v, err := s.vehicles.Get(ctx, b.VehicleID)
	if err != nil {
		return fmt.Errorf("service record update: %w", err)
	}
	serviced := s.now()
	v.LastService = &serviced
	v.UpdatedAt = serviced
	if _, err := s.vehicles.Update(ctx, v); err != nil {
		return fmt.Errorf("service record update: %w", err)
	}

	if b.PredictionID != "" {
		pred, err := s.predictions.Get(ctx, b.PredictionID)
		if err != nil {
			return fmt.Errorf("service record update: %w", err)
		}
		n, err := s.predictions.Resolve(ctx, b.VehicleID, pred.Component)
		if err != nil {
			return fmt.Errorf("service record update: %w", err)
		}
		s.log.Infof("booking %s resolved %d %s prediction(s) for vehicle %s",
			b.ID, n, pred.Component, b.VehicleID)
	}

	_, err = s.RecomputeStatus(ctx, b.VehicleID)
	return err
}
