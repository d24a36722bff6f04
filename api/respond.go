package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/identity"
)

// errForbidden signals a role check failure.
var errForbidden = errors.New("forbidden")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
	case errors.Is(err, errForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case apperrors.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case apperrors.IsValidation(err), apperrors.IsReferentialIntegrity(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case apperrors.IsInvalidTransition(err):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case apperrors.IsConcurrentModification(err):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Validationf("malformed request body: %v", err)
	}
	return nil
}
