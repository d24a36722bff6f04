package model

import (
	"strings"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

const vinLength = 17

// Vehicle represents one tracked vehicle in an owner's fleet.
type Vehicle struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"owner_id"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	VIN          string        `json:"vin"`
	LicensePlate string        `json:"license_plate,omitempty"`
	Mileage      int           `json:"mileage"`
	Status       VehicleStatus `json:"status"`
	LastService  *time.Time    `json:"last_service_date,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Version guards optimistic writes. Incremented by the store on update.
	Version int64 `json:"-"`
}

// NormalizeVIN upper-cases and trims a raw VIN.
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// Validate checks the field-level contract of a vehicle record.
func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.OwnerID) == "" {
		return apperrors.Validationf("vehicle owner_id is required")
	}
	if strings.TrimSpace(v.Make) == "" || strings.TrimSpace(v.Model) == "" {
		return apperrors.Validationf("vehicle make and model are required")
	}
	if v.Year < 1900 || v.Year > time.Now().Year()+1 {
		return apperrors.Validationf("vehicle year %d out of range", v.Year)
	}
	if len(v.VIN) != vinLength {
		return apperrors.Validationf("vin must be %d characters, got %d", vinLength, len(v.VIN))
	}
	if v.VIN != NormalizeVIN(v.VIN) {
		return apperrors.Validationf("vin must be upper-case normalized")
	}
	if v.Mileage < 0 {
		return apperrors.Validationf("mileage must be non-negative, got %d", v.Mileage)
	}
	if !v.Status.Valid() {
		return apperrors.Validationf("unknown vehicle status %q", string(v.Status))
	}
	return nil
}
