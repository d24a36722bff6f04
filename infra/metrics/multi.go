package metrics

import coremetrics "github.com/opfleet/fleethealth/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordBookingTransition forwards the event to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordBookingTransition(ev coremetrics.BookingTransitionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordBookingTransition(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordStatusChange forwards status changes to sinks that record them.
func (m *MultiSink) RecordStatusChange(ev coremetrics.StatusChangeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.StatusChangeRecorder); ok {
			if err := rec.RecordStatusChange(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSnapshot forwards fleet aggregates to sinks that record them.
func (m *MultiSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FleetSnapshotRecorder); ok {
			if err := rec.RecordFleetSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
