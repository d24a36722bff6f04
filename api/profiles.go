package api

import (
	"net/http"
	"time"

	"github.com/opfleet/fleethealth/core/model"
)

type createProfileRequest struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// handleGetProfile returns the caller's own profile record.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.profiles.Get(r.Context(), id.ProfileID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCreateProfile registers the caller's profile. ID and role come from
// the resolved identity, never the body.
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	now := time.Now()
	p := model.Profile{
		ID:        id.ProfileID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
		Role:      id.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := s.profiles.Insert(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
