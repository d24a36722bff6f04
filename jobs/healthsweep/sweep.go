// Package healthsweep periodically re-derives every vehicle's health
// status from its live predictions. Status normally updates on prediction
// ingest and booking completion; the sweep is the backstop that catches
// anything those paths missed, and it feeds fleet aggregate snapshots to
// the metrics sinks.
package healthsweep

import (
	"context"
	"time"

	"github.com/opfleet/fleethealth/core/fleet"
	coremetrics "github.com/opfleet/fleethealth/core/metrics"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/monitoring"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
)

// StatusRecomputer re-derives one vehicle's stored status.
type StatusRecomputer interface {
	RecomputeStatus(ctx context.Context, vehicleID string) (model.Vehicle, error)
}

// Sweeper walks the fleet and recomputes statuses.
type Sweeper struct {
	vehicles  store.Vehicles
	recompute StatusRecomputer
	sink      coremetrics.Sink
	log       logger.Logger
	now       func() time.Time
}

// New builds a sweeper. sink may be nil.
func New(vehicles store.Vehicles, recompute StatusRecomputer, sink coremetrics.Sink, log logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Sweeper{
		vehicles:  vehicles,
		recompute: recompute,
		sink:      sink,
		log:       log,
		now:       time.Now,
	}
}

// Run sweeps once immediately, then on every tick until the context is
// canceled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	s.sweep(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// SweepOnce runs a single pass and reports the number of vehicles whose
// status changed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	return s.sweepVehicles(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	changed, err := s.sweepVehicles(ctx)
	if err != nil {
		s.log.Errorf("health sweep: %v", err)
		monitoring.CaptureException(err, map[string]string{"module": "healthsweep"})
		return
	}
	s.log.Infof("health sweep done, %d status change(s)", changed)
}

func (s *Sweeper) sweepVehicles(ctx context.Context) (int, error) {
	vehicles, err := s.vehicles.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	byOwner := make(map[string][]model.Vehicle)
	for _, v := range vehicles {
		updated, err := s.recompute.RecomputeStatus(ctx, v.ID)
		if err != nil {
			// One bad vehicle must not starve the rest of the sweep.
			s.log.Errorf("recompute vehicle %s: %v", v.ID, err)
			byOwner[v.OwnerID] = append(byOwner[v.OwnerID], v)
			continue
		}
		if updated.Status != v.Status {
			changed++
		}
		byOwner[updated.OwnerID] = append(byOwner[updated.OwnerID], updated)
	}

	for ownerID, fleetVehicles := range byOwner {
		ev := coremetrics.FleetSnapshotEvent{
			OwnerID: ownerID,
			Summary: fleet.Aggregate(fleetVehicles),
			Time:    s.now(),
		}
		if rec, ok := s.sink.(coremetrics.FleetSnapshotRecorder); ok {
			if err := rec.RecordFleetSnapshot(ev); err != nil {
				s.log.Errorf("record fleet snapshot for owner %s: %v", ownerID, err)
			}
		}
	}
	return changed, nil
}
