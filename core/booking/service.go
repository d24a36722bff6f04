package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
	"github.com/opfleet/fleethealth/internal/eventbus"
)

// CompletedEvent is published when a booking reaches completed.
type CompletedEvent struct {
	Booking model.Booking
}

// TransitionEvent is published on every successful status change, for
// observability consumers.
type TransitionEvent struct {
	Booking model.Booking
	From    model.BookingStatus
	To      model.BookingStatus
}

// CompletionHook runs synchronously after a booking completes. Hooks carry
// the completed booking so collaborators can update the vehicle's service
// record, supersede predictions or offer RCA report creation. A hook error
// is logged and reported to the caller but does not roll the booking back.
type CompletionHook func(ctx context.Context, b model.Booking) error

// Service implements the booking lifecycle over the persistence
// collaborator.
type Service struct {
	vehicles    store.Vehicles
	bookings    store.Bookings
	centers     store.ServiceCenters
	predictions store.Predictions

	hooks       []CompletionHook
	completed   *eventbus.Bus[CompletedEvent]
	transitions *eventbus.Bus[TransitionEvent]
	log         logger.Logger
	now         func() time.Time
}

// NewService wires a booking service over the given stores.
func NewService(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		vehicles:    s.Vehicles(),
		bookings:    s.Bookings(),
		centers:     s.ServiceCenters(),
		predictions: s.Predictions(),
		completed:   eventbus.New[CompletedEvent](),
		transitions: eventbus.New[TransitionEvent](),
		log:         log,
		now:         time.Now,
	}
}

// OnCompleted registers a synchronous completion hook.
func (s *Service) OnCompleted(h CompletionHook) {
	s.hooks = append(s.hooks, h)
}

// CompletedEvents exposes the completion event stream.
func (s *Service) CompletedEvents() <-chan CompletedEvent { return s.completed.Subscribe() }

// TransitionEvents exposes the transition event stream.
func (s *Service) TransitionEvents() <-chan TransitionEvent { return s.transitions.Subscribe() }

// Close shuts down the event streams.
func (s *Service) Close() {
	s.completed.Close()
	s.transitions.Close()
}

// CreateInput carries the caller-supplied fields for a new booking.
type CreateInput struct {
	VehicleID        string
	OwnerID          string
	ServiceCenterID  string
	ServiceType      string
	ScheduledDate    time.Time
	EstimatedMinutes int
	Notes            string
	AssignedMechanic string

	// PredictionID, when set, pre-populates the booking from that
	// prediction's component and recommendation.
	PredictionID string
}

// Create validates and persists a new booking in the pending state. The
// vehicle must exist and belong to the claimed owner; the referential
// check happens at write time, not merely assumed.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Booking, error) {
	veh, err := s.vehicles.Get(ctx, in.VehicleID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	if veh.OwnerID != in.OwnerID {
		return model.Booking{}, apperrors.ReferentialIntegrityf(
			"vehicle %s is not owned by %s", in.VehicleID, in.OwnerID)
	}
	if _, err := s.centers.Get(ctx, in.ServiceCenterID); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	serviceType := strings.TrimSpace(in.ServiceType)
	notes := strings.TrimSpace(in.Notes)
	if in.PredictionID != "" {
		pred, err := s.predictions.Get(ctx, in.PredictionID)
		if err != nil {
			return model.Booking{}, fmt.Errorf("create booking: %w", err)
		}
		if pred.VehicleID != in.VehicleID {
			return model.Booking{}, apperrors.ReferentialIntegrityf(
				"prediction %s does not concern vehicle %s", in.PredictionID, in.VehicleID)
		}
		if serviceType == "" {
			serviceType = strings.ReplaceAll(string(pred.Component), "_", " ") + " service"
		}
		notes = prefillNotes(notes, pred)
	}

	today := s.now().Truncate(24 * time.Hour)
	if in.ScheduledDate.Before(today) {
		return model.Booking{}, apperrors.Validationf(
			"scheduled_date %s is in the past", in.ScheduledDate.Format(time.RFC3339))
	}

	b := model.Booking{
		ID:               uuid.NewString(),
		VehicleID:        in.VehicleID,
		OwnerID:          in.OwnerID,
		ServiceCenterID:  in.ServiceCenterID,
		AssignedMechanic: strings.TrimSpace(in.AssignedMechanic),
		ServiceType:      serviceType,
		ScheduledDate:    in.ScheduledDate,
		Status:           model.BookingPending,
		EstimatedMinutes: in.EstimatedMinutes,
		Notes:            notes,
		PredictionID:     in.PredictionID,
		CreatedAt:        s.now(),
		UpdatedAt:        s.now(),
	}
	if err := b.Validate(); err != nil {
		return model.Booking{}, err
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	s.log.Infof("booking %s created for vehicle %s", b.ID, b.VehicleID)
	return b, nil
}

// prefillNotes carries the prediction's risk context into the booking so
// the caller does not re-enter it.
func prefillNotes(notes string, p model.Prediction) string {
	ctxLine := fmt.Sprintf("Predicted %s risk: %.0f%% failure probability.",
		strings.ReplaceAll(string(p.Component), "_", " "), p.FailureProbability*100)
	if p.Recommendation != "" {
		ctxLine += " " + p.Recommendation
	}
	if notes == "" {
		return ctxLine
	}
	return notes + "\n" + ctxLine
}

// Get returns one booking by id.
func (s *Service) Get(ctx context.Context, id string) (model.Booking, error) {
	return s.bookings.Get(ctx, id)
}

// ListByOwner returns an owner's bookings.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	return s.bookings.ListByOwner(ctx, ownerID)
}

// ListByServiceCenter returns a service center's bookings.
func (s *Service) ListByServiceCenter(ctx context.Context, centerID string) ([]model.Booking, error) {
	return s.bookings.ListByServiceCenter(ctx, centerID)
}

// Confirm moves a pending booking to confirmed.
func (s *Service) Confirm(ctx context.Context, id string) (model.Booking, error) {
	return s.transition(ctx, id, model.BookingConfirmed, TransitionInput{})
}

// Start moves a confirmed booking to in_progress.
func (s *Service) Start(ctx context.Context, id string) (model.Booking, error) {
	return s.transition(ctx, id, model.BookingInProgress, TransitionInput{})
}

// Complete moves an in_progress booking to completed. Completion notes are
// required: a completed service without notes is a data-quality defect.
func (s *Service) Complete(ctx context.Context, id, completionNotes string) (model.Booking, error) {
	return s.transition(ctx, id, model.BookingCompleted, TransitionInput{CompletionNotes: completionNotes})
}

// Cancel cancels a booking. Cancelling an in_progress booking is
// exceptional and requires a reason, recorded in the notes.
func (s *Service) Cancel(ctx context.Context, id, reason string) (model.Booking, error) {
	return s.transition(ctx, id, model.BookingCancelled, TransitionInput{Reason: reason})
}

// TransitionInput carries the side data some transitions require.
type TransitionInput struct {
	CompletionNotes string
	Reason          string
}

// Transition applies an arbitrary requested status change, for callers that
// speak raw statuses (the HTTP layer).
func (s *Service) Transition(ctx context.Context, id string, to model.BookingStatus, in TransitionInput) (model.Booking, error) {
	return s.transition(ctx, id, to, in)
}

func (s *Service) transition(ctx context.Context, id string, to model.BookingStatus, in TransitionInput) (model.Booking, error) {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return model.Booking{}, fmt.Errorf("transition booking: %w", err)
	}
	from := b.Status
	// Non-edges fail here, before the per-target input checks: completing
	// a pending booking without notes is an invalid transition, not a
	// missing-notes problem.
	if !to.Valid() {
		return model.Booking{}, apperrors.Validationf("unknown booking status %q", string(to))
	}
	if !CanTransition(from, to) {
		return model.Booking{}, apperrors.NewTransitionError(string(from), string(to))
	}

	switch to {
	case model.BookingCompleted:
		notes := strings.TrimSpace(in.CompletionNotes)
		if notes == "" {
			return model.Booking{}, apperrors.Validationf("completion_notes required to complete booking %s", id)
		}
		b.CompletionNotes = notes
	case model.BookingCancelled:
		if from == model.BookingInProgress && strings.TrimSpace(in.Reason) == "" {
			return model.Booking{}, apperrors.Validationf("cancelling an in-progress booking requires a reason")
		}
		if r := strings.TrimSpace(in.Reason); r != "" {
			b.Notes = appendNote(b.Notes, "Cancelled: "+r)
		}
	}

	if err := applyTransition(&b, to); err != nil {
		return model.Booking{}, err
	}
	b.UpdatedAt = s.now()

	// Check-then-write is guarded by the booking's version: a concurrent
	// transition surfaces as a concurrent-modification error here.
	updated, err := s.bookings.Update(ctx, b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("transition booking: %w", err)
	}
	s.log.Infof("booking %s: %s -> %s", id, from, to)
	s.transitions.Publish(TransitionEvent{Booking: updated, From: from, To: to})

	if to == model.BookingCompleted {
		if err := s.runCompletionHooks(ctx, updated); err != nil {
			return updated, err
		}
		s.completed.Publish(CompletedEvent{Booking: updated})
	}
	return updated, nil
}

func (s *Service) runCompletionHooks(ctx context.Context, b model.Booking) error {
	for _, h := range s.hooks {
		if err := h(ctx, b); err != nil {
			s.log.Errorf("completion hook for booking %s: %v", b.ID, err)
			return fmt.Errorf("completion hook: %w", err)
		}
	}
	return nil
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
