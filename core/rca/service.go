// Package rca manages root cause analysis reports created after completed
// bookings.
package rca

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
)

// Service implements RCA report workflows.
type Service struct {
	bookings store.Bookings
	reports  store.RCAReports
	log      logger.Logger
	now      func() time.Time
}

// NewService wires an RCA service over the given stores.
func NewService(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		bookings: s.Bookings(),
		reports:  s.RCAReports(),
		log:      log,
		now:      time.Now,
	}
}

// CreateInput carries the fields for a new RCA report.
type CreateInput struct {
	BookingID          string
	Component          model.ComponentType
	FailureDescription string
	RootCause          string
	CAPASuggestions    model.JSONValue
	CreatedBy          string
}

// Create records an RCA report for a completed booking. Reports against
// bookings in any other state are rejected.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.RCAReport, error) {
	b, err := s.bookings.Get(ctx, in.BookingID)
	if err != nil {
		return model.RCAReport{}, fmt.Errorf("create rca report: %w", err)
	}
	if b.Status != model.BookingCompleted {
		return model.RCAReport{}, apperrors.Validationf(
			"rca report requires a completed booking, booking %s is %s", b.ID, b.Status)
	}
	r := model.RCAReport{
		ID:                 uuid.NewString(),
		BookingID:          b.ID,
		VehicleID:          b.VehicleID,
		Component:          in.Component,
		FailureDescription: in.FailureDescription,
		RootCause:          in.RootCause,
		CAPASuggestions:    in.CAPASuggestions,
		CreatedBy:          in.CreatedBy,
		CreatedAt:          s.now(),
		UpdatedAt:          s.now(),
	}
	if err := r.Validate(); err != nil {
		return model.RCAReport{}, err
	}
	if err := s.reports.Insert(ctx, r); err != nil {
		return model.RCAReport{}, fmt.Errorf("create rca report: %w", err)
	}
	s.log.Infof("rca report %s created for booking %s", r.ID, b.ID)
	return r, nil
}

// UpdateInput carries the editable fields of an RCA report.
type UpdateInput struct {
	FailureDescription string
	RootCause          string
	CAPASuggestions    model.JSONValue
}

// Update edits a report. Only the report's creator may edit it.
func (s *Service) Update(ctx context.Context, id, editorID string, in UpdateInput) (model.RCAReport, error) {
	r, err := s.reports.Get(ctx, id)
	if err != nil {
		return model.RCAReport{}, err
	}
	if r.CreatedBy != editorID {
		return model.RCAReport{}, apperrors.Validationf(
			"rca report %s may only be edited by its creator", id)
	}
	if in.FailureDescription != "" {
		r.FailureDescription = in.FailureDescription
	}
	if in.RootCause != "" {
		r.RootCause = in.RootCause
	}
	if in.CAPASuggestions != nil {
		r.CAPASuggestions = in.CAPASuggestions
	}
	r.UpdatedAt = s.now()
	if err := r.Validate(); err != nil {
		return model.RCAReport{}, err
	}
	return s.reports.Update(ctx, r)
}

// ListByBooking returns the reports filed against one booking.
func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]model.RCAReport, error) {
	return s.reports.ListByBooking(ctx, bookingID)
}
