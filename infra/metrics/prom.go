package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/opfleet/fleethealth/core/metrics"
)

// PromSink records fleet health events in Prometheus metrics.
type PromSink struct {
	transitions   *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	fleet         *prometheus.GaugeVec
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_total",
		Help: "Total number of booking status transitions",
	}, []string{"from", "to"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vehicle_status_changes_total",
		Help: "Total number of vehicle health status changes",
	}, []string{"from", "to"})
	fleet := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_vehicles",
		Help: "Number of vehicles per owner and health status",
	}, []string{"owner_id", "status"})

	if err := reg.Register(transitions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			transitions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(statusChanges); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			statusChanges = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{transitions: transitions, statusChanges: statusChanges, fleet: fleet}, nil
}

// RecordBookingTransition increments the transition counter.
func (s *PromSink) RecordBookingTransition(ev coremetrics.BookingTransitionEvent) error {
	s.transitions.WithLabelValues(string(ev.From), string(ev.To)).Inc()
	return nil
}

// RecordStatusChange increments the status change counter.
func (s *PromSink) RecordStatusChange(ev coremetrics.StatusChangeEvent) error {
	s.statusChanges.WithLabelValues(string(ev.From), string(ev.To)).Inc()
	return nil
}

// RecordFleetSnapshot sets the per-owner fleet gauges.
func (s *PromSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshotEvent) error {
	s.fleet.WithLabelValues(ev.OwnerID, "healthy").Set(float64(ev.Summary.Healthy))
	s.fleet.WithLabelValues(ev.OwnerID, "warning").Set(float64(ev.Summary.Warning))
	s.fleet.WithLabelValues(ev.OwnerID, "critical").Set(float64(ev.Summary.Critical))
	return nil
}
