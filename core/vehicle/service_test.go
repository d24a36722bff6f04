package vehicle

import (
	"context"
	"testing"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/fleet"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/infra/store/memory"
)

func newFixture(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := NewService(st, nil)
	t.Cleanup(svc.Close)
	return svc, st
}

func registerInput() RegisterInput {
	return RegisterInput{
		OwnerID: "o1",
		Make:    "Honda",
		Model:   "Accord",
		Year:    2019,
		VIN:     "1hgbh41jxmn109186",
		Mileage: 42000,
	}
}

func TestRegisterNormalizesVIN(t *testing.T) {
	svc, _ := newFixture(t)
	v, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if v.VIN != "1HGBH41JXMN109186" {
		t.Fatalf("vin not normalized: %s", v.VIN)
	}
	if v.Status != model.StatusHealthy {
		t.Fatalf("expected healthy default, got %s", v.Status)
	}
}

func TestRegisterDuplicateVIN(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Same VIN, different case and owner: still one physical vehicle.
	in := registerInput()
	in.OwnerID = "o2"
	in.VIN = "1HGBH41JXMN109186"
	_, err := svc.Register(ctx, in)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error on duplicate vin, got %v", err)
	}
}

func TestRegisterRejectsBadFields(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	in := registerInput()
	in.VIN = "TOOSHORT"
	if _, err := svc.Register(ctx, in); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for short vin, got %v", err)
	}

	in = registerInput()
	in.Year = 1850
	if _, err := svc.Register(ctx, in); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for year, got %v", err)
	}
}

func TestFleetSummary(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	vins := []string{
		"1HGBH41JXMN109186",
		"2HGBH41JXMN109187",
		"3HGBH41JXMN109188",
	}
	statuses := []model.VehicleStatus{model.StatusHealthy, model.StatusWarning, model.StatusCritical}
	for i, vin := range vins {
		in := registerInput()
		in.VIN = vin
		v, err := svc.Register(ctx, in)
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		v.Status = statuses[i]
		if _, err := st.Vehicles().Update(ctx, v); err != nil {
			t.Fatalf("seed status: %v", err)
		}
	}

	sum, err := svc.FleetSummary(ctx, "o1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := fleet.Summary{Total: 3, Healthy: 1, Warning: 1, Critical: 1}
	if sum != want {
		t.Fatalf("summary mismatch: got %+v want %+v", sum, want)
	}

	empty, err := svc.FleetSummary(ctx, "nobody")
	if err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if empty.Total != 0 {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestTopPredictions(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	v, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	base := time.Now()
	preds := []model.Prediction{
		{ID: "p1", VehicleID: v.ID, Component: model.ComponentBrakes, FailureProbability: 0.8, ConfidenceScore: 0.9, IsCritical: true, CreatedAt: base},
		{ID: "p2", VehicleID: v.ID, Component: model.ComponentBattery, FailureProbability: 0.5, ConfidenceScore: 0.7, CreatedAt: base},
		{ID: "p3", VehicleID: v.ID, Component: model.ComponentEngine, FailureProbability: 0.9, ConfidenceScore: 0.9, Resolved: true, CreatedAt: base},
	}
	for _, p := range preds {
		if err := st.Predictions().Insert(ctx, p); err != nil {
			t.Fatalf("seed prediction: %v", err)
		}
	}

	top, err := svc.TopPredictions(ctx, v.ID)
	if err != nil {
		t.Fatalf("top predictions: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("resolved prediction leaked into ranking: %d entries", len(top))
	}
	if top[0].ID != "p1" || top[1].ID != "p2" {
		t.Fatalf("unexpected order: %s, %s", top[0].ID, top[1].ID)
	}

	if _, err := svc.TopPredictions(ctx, "ghost"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRecomputeStatus(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	v, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	changes := svc.StatusChanges()

	pred := model.Prediction{
		ID: "p1", VehicleID: v.ID, Component: model.ComponentTransmission,
		FailureProbability: 0.5, ConfidenceScore: 0.6, CreatedAt: time.Now(),
	}
	if err := st.Predictions().Insert(ctx, pred); err != nil {
		t.Fatalf("seed prediction: %v", err)
	}

	got, err := svc.RecomputeStatus(ctx, v.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.Status != model.StatusWarning {
		t.Fatalf("expected warning, got %s", got.Status)
	}
	select {
	case ev := <-changes:
		if ev.From != model.StatusHealthy || ev.To != model.StatusWarning {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("expected status change event")
	}

	// Re-running with no change publishes nothing and writes nothing.
	before := got.Version
	got, err = svc.RecomputeStatus(ctx, v.ID)
	if err != nil {
		t.Fatalf("recompute again: %v", err)
	}
	if got.Version != before {
		t.Fatalf("no-op recompute bumped version %d -> %d", before, got.Version)
	}
	select {
	case ev := <-changes:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestOnBookingCompleted(t *testing.T) {
	svc, st := newFixture(t)
	ctx := context.Background()
	v, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Two live brake predictions and one battery. The booking addresses
	// brakes, so both brake rows resolve and battery keeps the status at
	// warning.
	now := time.Now()
	seed := []model.Prediction{
		{ID: "p1", VehicleID: v.ID, Component: model.ComponentBrakes, FailureProbability: 0.8, ConfidenceScore: 0.9, IsCritical: true, CreatedAt: now},
		{ID: "p2", VehicleID: v.ID, Component: model.ComponentBrakes, FailureProbability: 0.76, ConfidenceScore: 0.8, CreatedAt: now},
		{ID: "p3", VehicleID: v.ID, Component: model.ComponentBattery, FailureProbability: 0.5, ConfidenceScore: 0.7, CreatedAt: now},
	}
	for _, p := range seed {
		if err := st.Predictions().Insert(ctx, p); err != nil {
			t.Fatalf("seed prediction: %v", err)
		}
	}
	if _, err := svc.RecomputeStatus(ctx, v.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	b := model.Booking{
		ID: "b1", VehicleID: v.ID, OwnerID: "o1", ServiceCenterID: "c1",
		ServiceType: "brakes service", ScheduledDate: now, Status: model.BookingCompleted,
		CompletionNotes: "Pads and rotors replaced.", PredictionID: "p1",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := svc.OnBookingCompleted(ctx, b); err != nil {
		t.Fatalf("completion hook: %v", err)
	}

	got, err := svc.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastService == nil {
		t.Fatalf("last_service_date not stamped")
	}
	if got.Status != model.StatusWarning {
		t.Fatalf("expected warning after brakes resolved, got %s", got.Status)
	}

	live, err := st.Predictions().ListByVehicle(ctx, v.ID, true)
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(live) != 1 || live[0].ID != "p3" {
		t.Fatalf("expected only battery prediction live, got %+v", live)
	}
}
