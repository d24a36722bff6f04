package api

import (
	"net/http"
	"time"

	"github.com/opfleet/fleethealth/core/booking"
	"github.com/opfleet/fleethealth/core/identity"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/rca"
)

type createBookingRequest struct {
	VehicleID        string    `json:"vehicle_id"`
	ServiceCenterID  string    `json:"service_center_id"`
	ServiceType      string    `json:"service_type"`
	ScheduledDate    time.Time `json:"scheduled_date"`
	EstimatedMinutes int       `json:"estimated_duration"`
	Notes            string    `json:"notes"`
	PredictionID     string    `json:"prediction_id"`
}

type transitionRequest struct {
	Status          string `json:"status"`
	CompletionNotes string `json:"completion_notes"`
	Reason          string `json:"reason"`
}

type createRCARequest struct {
	BookingID          string          `json:"booking_id"`
	Component          string          `json:"component"`
	FailureDescription string          `json:"failure_description"`
	RootCause          string          `json:"root_cause"`
	CAPASuggestions    model.JSONValue `json:"capa_suggestions"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r, model.RoleVehicleOwner, model.RoleFleetAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.bookings.Create(r.Context(), booking.CreateInput{
		VehicleID:        req.VehicleID,
		OwnerID:          id.ProfileID,
		ServiceCenterID:  req.ServiceCenterID,
		ServiceType:      req.ServiceType,
		ScheduledDate:    req.ScheduledDate,
		EstimatedMinutes: req.EstimatedMinutes,
		Notes:            req.Notes,
		PredictionID:     req.PredictionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// Service center staff list by center, everyone else by owner.
	if centerID := r.URL.Query().Get("service_center_id"); centerID != "" {
		if _, err := s.caller(r, model.RoleServiceCenterManager); err != nil {
			writeError(w, err)
			return
		}
		list, err := s.bookings.ListByServiceCenter(r.Context(), centerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	list, err := s.bookings.ListByOwner(r.Context(), id.ProfileID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleBookingTransition(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	to, err := model.ParseBookingStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !canTransitionBooking(id, b, to) {
		writeError(w, errForbidden)
		return
	}

	updated, err := s.bookings.Transition(r.Context(), b.ID, to, booking.TransitionInput{
		CompletionNotes: req.CompletionNotes,
		Reason:          req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// canTransitionBooking enforces who may move a booking: owners may only
// cancel their own, staff roles drive the service workflow.
func canTransitionBooking(id identity.Identity, b model.Booking, to model.BookingStatus) bool {
	switch id.Role {
	case model.RoleServiceCenterManager, model.RolePlatformAdmin:
		return true
	case model.RoleVehicleOwner, model.RoleFleetAdmin:
		return to == model.BookingCancelled && b.OwnerID == id.ProfileID
	}
	return false
}

func (s *Server) handleCreateRCA(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r, model.RoleServiceCenterManager, model.RoleManufacturingTeam)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createRCARequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var component model.ComponentType
	if req.Component != "" {
		component, err = model.ParseComponentType(req.Component)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	report, err := s.rca.Create(r.Context(), rca.CreateInput{
		BookingID:          req.BookingID,
		Component:          component,
		FailureDescription: req.FailureDescription,
		RootCause:          req.RootCause,
		CAPASuggestions:    req.CAPASuggestions,
		CreatedBy:          id.ProfileID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListRCA(w http.ResponseWriter, r *http.Request) {
	if _, err := s.caller(r, model.RoleServiceCenterManager, model.RoleManufacturingTeam, model.RoleFleetAdmin); err != nil {
		writeError(w, err)
		return
	}
	reports, err := s.rca.ListByBooking(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleListCenters(w http.ResponseWriter, r *http.Request) {
	if _, err := s.caller(r); err != nil {
		writeError(w, err)
		return
	}
	centers, err := s.centers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, centers)
}

func (s *Server) handleCreateCenter(w http.ResponseWriter, r *http.Request) {
	if _, err := s.caller(r, model.RoleServiceCenterManager); err != nil {
		writeError(w, err)
		return
	}
	var c model.ServiceCenter
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.centers.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
