// Package api exposes the fleet health service over JSON HTTP. Handlers
// resolve the caller identity, enforce role boundaries and translate the
// error taxonomy into HTTP statuses. Timeouts and cancellation live here,
// not in the core services.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/opfleet/fleethealth/core/booking"
	"github.com/opfleet/fleethealth/core/identity"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/rca"
	"github.com/opfleet/fleethealth/core/servicecenter"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/core/telemetry"
	"github.com/opfleet/fleethealth/core/vehicle"
	"github.com/opfleet/fleethealth/infra/logger"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	vehicles  *vehicle.Service
	bookings  *booking.Service
	telemetry *telemetry.Service
	rca       *rca.Service
	centers   *servicecenter.Service
	profiles  store.Profiles
	ident     identity.Resolver
	log       logger.Logger
}

// NewServer wires the handler set over the given services.
func NewServer(
	vehicles *vehicle.Service,
	bookings *booking.Service,
	tel *telemetry.Service,
	rcaSvc *rca.Service,
	centers *servicecenter.Service,
	profiles store.Profiles,
	ident identity.Resolver,
	log logger.Logger,
) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{
		vehicles:  vehicles,
		bookings:  bookings,
		telemetry: tel,
		rca:       rcaSvc,
		centers:   centers,
		profiles:  profiles,
		ident:     ident,
		log:       log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/fleet/summary", s.handleFleetSummary)
	mux.HandleFunc("GET /api/vehicles", s.handleListVehicles)
	mux.HandleFunc("POST /api/vehicles", s.handleRegisterVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}", s.handleVehicleDetail)
	mux.HandleFunc("GET /api/vehicles/{id}/telemetry", s.handleVehicleTelemetry)
	mux.HandleFunc("POST /api/bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /api/bookings", s.handleListBookings)
	mux.HandleFunc("POST /api/bookings/{id}/transition", s.handleBookingTransition)
	mux.HandleFunc("GET /api/bookings/{id}/rca", s.handleListRCA)
	mux.HandleFunc("POST /api/rca", s.handleCreateRCA)
	mux.HandleFunc("GET /api/service-centers", s.handleListCenters)
	mux.HandleFunc("POST /api/service-centers", s.handleCreateCenter)
	mux.HandleFunc("GET /api/profiles/me", s.handleGetProfile)
	mux.HandleFunc("POST /api/profiles/me", s.handleCreateProfile)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// caller resolves the request identity, optionally restricted to roles.
func (s *Server) caller(r *http.Request, roles ...model.UserRole) (identity.Identity, error) {
	id, err := s.ident.Resolve(r)
	if err != nil {
		// Any resolver failure reads as unauthenticated to the client.
		return identity.Identity{}, fmt.Errorf("%w: %v", identity.ErrUnauthenticated, err)
	}
	if len(roles) == 0 {
		return id, nil
	}
	for _, role := range roles {
		if id.Role == role || id.Role == model.RolePlatformAdmin {
			return id, nil
		}
	}
	return identity.Identity{}, errForbidden
}
