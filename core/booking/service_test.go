package booking

import (
	"context"
	"testing"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/infra/store/memory"
)

func newFixture(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	veh := model.Vehicle{
		ID: "v1", OwnerID: "o1", Make: "Toyota", Model: "Camry", Year: 2021,
		VIN: "1HGBH41JXMN109186", Status: model.StatusHealthy, CreatedAt: time.Now(),
	}
	if err := st.Vehicles().Insert(ctx, veh); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	center := model.ServiceCenter{ID: "c1", Name: "Main Street Auto", Address: "1 Main St", City: "Springfield"}
	if err := st.ServiceCenters().Insert(ctx, center); err != nil {
		t.Fatalf("seed center: %v", err)
	}
	svc := NewService(st, nil)
	t.Cleanup(svc.Close)
	return svc, st
}

func validInput() CreateInput {
	return CreateInput{
		VehicleID:       "v1",
		OwnerID:         "o1",
		ServiceCenterID: "c1",
		ServiceType:     "brake inspection",
		ScheduledDate:   time.Now().Add(48 * time.Hour),
	}
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc, _ := newFixture(t)
	b, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BookingPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestCreateOwnerMismatch(t *testing.T) {
	svc, _ := newFixture(t)
	in := validInput()
	in.OwnerID = "someone-else"
	_, err := svc.Create(context.Background(), in)
	if !apperrors.IsReferentialIntegrity(err) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
}

func TestCreateUnknownVehicleAndCenter(t *testing.T) {
	svc, _ := newFixture(t)
	in := validInput()
	in.VehicleID = "ghost"
	if _, err := svc.Create(context.Background(), in); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found for vehicle, got %v", err)
	}
	in = validInput()
	in.ServiceCenterID = "ghost"
	if _, err := svc.Create(context.Background(), in); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found for center, got %v", err)
	}
}

func TestCreateRejectsPastDate(t *testing.T) {
	svc, _ := newFixture(t)
	in := validInput()
	in.ScheduledDate = time.Now().Add(-48 * time.Hour)
	if _, err := svc.Create(context.Background(), in); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for past date, got %v", err)
	}
}

func TestCreateFromPrediction(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	pred := model.Prediction{
		ID: "p1", VehicleID: "v1", Component: model.ComponentCoolingSystem,
		FailureProbability: 0.82, ConfidenceScore: 0.9, IsCritical: true,
		Recommendation: "Replace coolant pump within 2 weeks.", CreatedAt: time.Now(),
	}
	if err := st.Predictions().Insert(ctx, pred); err != nil {
		t.Fatalf("seed prediction: %v", err)
	}

	in := validInput()
	in.ServiceType = ""
	in.PredictionID = "p1"
	b, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.PredictionID != "p1" {
		t.Fatalf("prediction link lost")
	}
	if b.ServiceType != "cooling system service" {
		t.Fatalf("expected service type from component, got %q", b.ServiceType)
	}
	if b.Notes == "" {
		t.Fatalf("expected risk context in notes")
	}
}

func TestCreateFromForeignPrediction(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	pred := model.Prediction{
		ID: "p2", VehicleID: "other-vehicle", Component: model.ComponentBrakes,
		FailureProbability: 0.5, ConfidenceScore: 0.5, CreatedAt: time.Now(),
	}
	if err := st.Predictions().Insert(ctx, pred); err != nil {
		t.Fatalf("seed prediction: %v", err)
	}
	in := validInput()
	in.PredictionID = "p2"
	if _, err := svc.Create(ctx, in); !apperrors.IsReferentialIntegrity(err) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
}

func TestFullLifecycle(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b, err = svc.Confirm(ctx, b.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b, err = svc.Start(ctx, b.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Completing without notes is a data-quality defect, flagged not allowed.
	if _, err := svc.Complete(ctx, b.ID, "  "); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for empty completion notes, got %v", err)
	}

	b, err = svc.Complete(ctx, b.ID, "Replaced brake pads, bled lines.")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.Status != model.BookingCompleted || b.CompletionNotes == "" {
		t.Fatalf("unexpected booking after completion: %+v", b)
	}

	// completed is terminal.
	if _, err := svc.Cancel(ctx, b.ID, "changed my mind"); !apperrors.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition from completed, got %v", err)
	}
}

func TestCancelInProgressRequiresReason(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, validInput())
	b, _ = svc.Confirm(ctx, b.ID)
	if _, err := svc.Start(ctx, b.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Cancel(ctx, b.ID, ""); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	b, err := svc.Cancel(ctx, b.ID, "customer no-show")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.Status != model.BookingCancelled {
		t.Fatalf("expected cancelled, got %s", b.Status)
	}
}

func TestSkippingStatesFails(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, validInput())
	if _, err := svc.Start(ctx, b.ID); !apperrors.IsInvalidTransition(err) {
		t.Fatalf("pending -> in_progress must fail, got %v", err)
	}
	if _, err := svc.Complete(ctx, b.ID, "done"); !apperrors.IsInvalidTransition(err) {
		t.Fatalf("pending -> completed must fail, got %v", err)
	}
}

func TestNonEdgeWinsOverMissingSideData(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	// Completing a pending booking without notes is an invalid transition;
	// the missing notes must not turn it into a validation error.
	b, _ := svc.Create(ctx, validInput())
	if _, err := svc.Complete(ctx, b.ID, ""); !apperrors.IsInvalidTransition(err) {
		t.Fatalf("pending -> completed without notes: want invalid transition, got %v", err)
	}

	// Same from a terminal state.
	if _, err := svc.Cancel(ctx, b.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Complete(ctx, b.ID, ""); !apperrors.IsInvalidTransition(err) {
		t.Fatalf("cancelled -> completed without notes: want invalid transition, got %v", err)
	}
}

func TestConcurrentTransitionDetected(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, validInput())

	// Another staff member advances the booking behind this service's back.
	sneaky, _ := st.Bookings().Get(ctx, b.ID)
	sneaky.Status = model.BookingCancelled
	if _, err := st.Bookings().Update(ctx, sneaky); err != nil {
		t.Fatalf("sneaky update: %v", err)
	}

	// The stale read inside transition now sees cancelled, so confirm is a
	// non-edge rather than a version conflict.
	if _, err := svc.Confirm(ctx, b.ID); !apperrors.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCompletionHooksAndEvents(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	var hooked []string
	svc.OnCompleted(func(_ context.Context, b model.Booking) error {
		hooked = append(hooked, b.ID)
		return nil
	})
	events := svc.CompletedEvents()

	b, _ := svc.Create(ctx, validInput())
	b, _ = svc.Confirm(ctx, b.ID)
	b, _ = svc.Start(ctx, b.ID)
	if _, err := svc.Complete(ctx, b.ID, "done"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if len(hooked) != 1 || hooked[0] != b.ID {
		t.Fatalf("completion hook not run: %v", hooked)
	}
	select {
	case ev := <-events:
		if ev.Booking.ID != b.ID {
			t.Fatalf("unexpected event booking %s", ev.Booking.ID)
		}
	default:
		t.Fatalf("expected completed event")
	}
}
