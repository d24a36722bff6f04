// Package app wires the configured collaborators into a running service:
// store, core services, ingest consumer, metrics sinks, monitoring and the
// HTTP API.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/opfleet/fleethealth/api"
	"github.com/opfleet/fleethealth/config"
	"github.com/opfleet/fleethealth/core/booking"
	coreidentity "github.com/opfleet/fleethealth/core/identity"
	coremetrics "github.com/opfleet/fleethealth/core/metrics"
	"github.com/opfleet/fleethealth/core/model"
	coremon "github.com/opfleet/fleethealth/core/monitoring"
	"github.com/opfleet/fleethealth/core/prediction"
	"github.com/opfleet/fleethealth/core/rca"
	"github.com/opfleet/fleethealth/core/servicecenter"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/core/telemetry"
	"github.com/opfleet/fleethealth/core/vehicle"
	infraidentity "github.com/opfleet/fleethealth/infra/identity"
	"github.com/opfleet/fleethealth/infra/logger"
	"github.com/opfleet/fleethealth/infra/metrics"
	"github.com/opfleet/fleethealth/infra/monitoring"
	"github.com/opfleet/fleethealth/infra/mqtt"
	"github.com/opfleet/fleethealth/infra/store/memory"
	"github.com/opfleet/fleethealth/infra/store/sqlite"
	"github.com/opfleet/fleethealth/jobs/healthsweep"
)

// Service orchestrates the fleet health collaborators.
type Service struct {
	cfg *config.Config

	store    store.Store
	vehicles *vehicle.Service
	bookings *booking.Service
	sink     coremetrics.Sink
	consumer *mqtt.Consumer
	server   *api.Server
	sweeper  *healthsweep.Sweeper
	log      logger.Logger

	closeStore func() error
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.LogLevel)
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	st, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	sink, err := metrics.New(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	vehicles := vehicle.NewService(st, logger.New("vehicle"))
	bookings := booking.NewService(st, logger.New("booking"))
	bookings.OnCompleted(vehicles.OnBookingCompleted)
	tel := telemetry.NewService(st, logger.New("telemetry"))
	preds := prediction.NewRecorder(st, vehicles, logger.New("prediction"))
	rcaSvc := rca.NewService(st, logger.New("rca"))
	centers := servicecenter.NewService(st, logger.New("servicecenter"))

	ident, err := newResolver(cfg.API)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	server := api.NewServer(vehicles, bookings, tel, rcaSvc, centers, st.Profiles(), ident, logger.New("api"))

	svc := &Service{
		cfg:        cfg,
		store:      st,
		vehicles:   vehicles,
		bookings:   bookings,
		sink:       sink,
		server:     server,
		sweeper:    healthsweep.New(st.Vehicles(), vehicles, sink, logger.New("healthsweep")),
		log:        logg,
		closeStore: closeStore,
	}

	if cfg.Ingest.Enabled {
		consumer, err := mqtt.NewConsumer(cfg.Ingest.MQTT, tel, preds)
		if err != nil {
			return nil, fmt.Errorf("mqtt consumer: %w", err)
		}
		svc.consumer = consumer
	}
	return svc, nil
}

func openStore(cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "sqlite":
		st, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %s", cfg.Backend)
	}
}

func newResolver(cfg config.APIConfig) (coreidentity.Resolver, error) {
	if cfg.JWTSecret != "" {
		return infraidentity.NewJWTResolver(cfg.JWTSecret)
	}
	role, err := model.ParseUserRole(cfg.StaticRole)
	if err != nil {
		return nil, err
	}
	return coreidentity.Static{ID: coreidentity.Identity{ProfileID: cfg.StaticProfileID, Role: role}}, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.pumpEvents(ctx)

	if promEnabled(s.cfg.Metrics) {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Sweep.Enabled {
		go func() {
			defer coremon.Recover()
			s.sweeper.Run(ctx, time.Duration(s.cfg.Sweep.IntervalMinutes)*time.Minute)
		}()
	}

	return s.server.Run(ctx, s.cfg.API.Addr,
		time.Duration(s.cfg.API.ReadTimeoutSeconds)*time.Second,
		time.Duration(s.cfg.API.WriteTimeoutSeconds)*time.Second)
}

// pumpEvents forwards domain events to the metrics sinks.
func (s *Service) pumpEvents(ctx context.Context) {
	defer coremon.Recover()
	transitions := s.bookings.TransitionEvents()
	statusChanges := s.vehicles.StatusChanges()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-transitions:
			if !ok {
				return
			}
			err := s.sink.RecordBookingTransition(coremetrics.BookingTransitionEvent{
				BookingID: ev.Booking.ID,
				VehicleID: ev.Booking.VehicleID,
				From:      ev.From,
				To:        ev.To,
				Time:      time.Now(),
			})
			if err != nil {
				s.log.Errorf("record booking transition: %v", err)
			}
		case ev, ok := <-statusChanges:
			if !ok {
				return
			}
			if rec, isRec := s.sink.(coremetrics.StatusChangeRecorder); isRec {
				err := rec.RecordStatusChange(coremetrics.StatusChangeEvent{
					VehicleID: ev.VehicleID,
					From:      ev.From,
					To:        ev.To,
					Time:      time.Now(),
				})
				if err != nil {
					s.log.Errorf("record status change: %v", err)
				}
			}
		}
	}
}

func promEnabled(cfg coremetrics.Config) bool {
	for _, s := range cfg.Sinks {
		if s == "prometheus" {
			return true
		}
	}
	return false
}

// SweepOnce runs one health sweep pass and returns the number of vehicles
// whose status changed.
func (s *Service) SweepOnce(ctx context.Context) (int, error) {
	return s.sweeper.SweepOnce(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.consumer != nil {
		s.consumer.Disconnect()
	}
	s.bookings.Close()
	s.vehicles.Close()
	coremon.Flush(2 * time.Second)
	return s.closeStore()
}
