package api

import (
	"net/http"
	"strconv"

	"github.com/opfleet/fleethealth/core/identity"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/vehicle"
)

type registerVehicleRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	VIN          string `json:"vin"`
	LicensePlate string `json:"license_plate"`
	Mileage      int    `json:"mileage"`
}

type vehicleDetailResponse struct {
	Vehicle     model.Vehicle      `json:"vehicle"`
	Predictions []model.Prediction `json:"predictions"`
}

func (s *Server) handleFleetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sum, err := s.vehicles.FleetSummary(r.Context(), id.ProfileID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ownerID := id.ProfileID
	// Admins may inspect any owner's fleet.
	if q := r.URL.Query().Get("owner_id"); q != "" && (id.Role == model.RoleFleetAdmin || id.Role == model.RolePlatformAdmin) {
		ownerID = q
	}
	list, err := s.vehicles.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRegisterVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r, model.RoleVehicleOwner, model.RoleFleetAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	var req registerVehicleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, err := s.vehicles.Register(r.Context(), vehicle.RegisterInput{
		OwnerID:      id.ProfileID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		VIN:          req.VIN,
		LicensePlate: req.LicensePlate,
		Mileage:      req.Mileage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleVehicleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.vehicles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !canSeeVehicle(id, v) {
		writeError(w, errForbidden)
		return
	}
	preds, err := s.vehicles.TopPredictions(r.Context(), v.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleDetailResponse{Vehicle: v, Predictions: preds})
}

func (s *Server) handleVehicleTelemetry(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.vehicles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !canSeeVehicle(id, v) {
		writeError(w, errForbidden)
		return
	}
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.telemetry.List(r.Context(), v.ID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// canSeeVehicle gates vehicle detail access: the owner, or any staff role.
func canSeeVehicle(id identity.Identity, v model.Vehicle) bool {
	if id.ProfileID == v.OwnerID {
		return true
	}
	switch id.Role {
	case model.RoleServiceCenterManager, model.RoleFleetAdmin, model.RoleManufacturingTeam, model.RolePlatformAdmin:
		return true
	}
	return false
}
