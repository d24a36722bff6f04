package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opfleet/fleethealth/core/fleet"
	coremetrics "github.com/opfleet/fleethealth/core/metrics"
	"github.com/opfleet/fleethealth/core/model"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	fams, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range fams {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			for k, v := range labels {
				found := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == k && lp.GetValue() == v {
						found = true
						break
					}
				}
				if !found {
					continue metric
				}
			}
			if m.GetGauge() != nil {
				return m.GetGauge().GetValue()
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestPromSinkBookingTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}

	ev := coremetrics.BookingTransitionEvent{
		BookingID: "b1", VehicleID: "v1",
		From: model.BookingPending, To: model.BookingConfirmed, Time: time.Now(),
	}
	if err := sink.RecordBookingTransition(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordBookingTransition(ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	got := gaugeValue(t, reg, "booking_transitions_total", map[string]string{"from": "pending", "to": "confirmed"})
	if got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestPromSinkFleetSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}

	err = sink.RecordFleetSnapshot(coremetrics.FleetSnapshotEvent{
		OwnerID: "o1",
		Summary: fleet.Summary{Total: 5, Healthy: 3, Warning: 1, Critical: 1},
		Time:    time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := gaugeValue(t, reg, "fleet_vehicles", map[string]string{"owner_id": "o1", "status": "healthy"}); got != 3 {
		t.Fatalf("healthy gauge: %v", got)
	}
	if got := gaugeValue(t, reg, "fleet_vehicles", map[string]string{"owner_id": "o1", "status": "critical"}); got != 1 {
		t.Fatalf("critical gauge: %v", got)
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
}
