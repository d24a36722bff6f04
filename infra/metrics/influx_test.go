package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opfleet/fleethealth/core/fleet"
	coremetrics "github.com/opfleet/fleethealth/core/metrics"
	"github.com/opfleet/fleethealth/core/model"
)

func newCaptureServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func TestInfluxSinkBookingTransition(t *testing.T) {
	srv, body := newCaptureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	err := sink.RecordBookingTransition(coremetrics.BookingTransitionEvent{
		BookingID: "b1", VehicleID: "v1",
		From: model.BookingConfirmed, To: model.BookingInProgress, Time: time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.HasPrefix(*body, "booking_transition,") {
		t.Fatalf("unexpected measurement: %q", *body)
	}
	for _, want := range []string{"vehicle_id=v1", "from=confirmed", "to=in_progress"} {
		if !strings.Contains(*body, want) {
			t.Fatalf("missing %s in %q", want, *body)
		}
	}
}

func TestInfluxSinkFleetSnapshot(t *testing.T) {
	srv, body := newCaptureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	err := sink.RecordFleetSnapshot(coremetrics.FleetSnapshotEvent{
		OwnerID: "o1",
		Summary: fleet.Summary{Total: 2, Healthy: 1, Warning: 1},
		Time:    time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.HasPrefix(*body, "fleet_summary,") {
		t.Fatalf("unexpected measurement: %q", *body)
	}
	for _, want := range []string{"owner_id=o1", "total=2i", "healthy=1i"} {
		if !strings.Contains(*body, want) {
			t.Fatalf("missing %s in %q", want, *body)
		}
	}
}

func TestInfluxFallbackToNop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL, "token", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}
