// Package metrics defines the observability sink contract. Sinks receive
// domain events and forward them to Prometheus, InfluxDB or nothing at all.
package metrics

import (
	"time"

	"github.com/opfleet/fleethealth/core/fleet"
	"github.com/opfleet/fleethealth/core/model"
)

// BookingTransitionEvent records one successful booking status change.
type BookingTransitionEvent struct {
	BookingID string
	VehicleID string
	From      model.BookingStatus
	To        model.BookingStatus
	Time      time.Time
}

// StatusChangeEvent records a vehicle health status change.
type StatusChangeEvent struct {
	VehicleID string
	From      model.VehicleStatus
	To        model.VehicleStatus
	Time      time.Time
}

// FleetSnapshotEvent is a periodic aggregate of an owner's fleet.
type FleetSnapshotEvent struct {
	OwnerID string
	Summary fleet.Summary
	Time    time.Time
}

// Sink records booking transitions for observability purposes.
type Sink interface {
	RecordBookingTransition(ev BookingTransitionEvent) error
}

// StatusChangeRecorder records vehicle status changes.
type StatusChangeRecorder interface {
	RecordStatusChange(ev StatusChangeEvent) error
}

// FleetSnapshotRecorder records fleet aggregate snapshots.
type FleetSnapshotRecorder interface {
	RecordFleetSnapshot(ev FleetSnapshotEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordBookingTransition(BookingTransitionEvent) error { return nil }
func (NopSink) RecordStatusChange(StatusChangeEvent) error           { return nil }
func (NopSink) RecordFleetSnapshot(FleetSnapshotEvent) error         { return nil }
