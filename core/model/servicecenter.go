package model

import (
	"strings"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

// ServiceCenter is a garage offering maintenance services, managed by one
// profile. OperatingHours is producer-defined structured data.
type ServiceCenter struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	State           string    `json:"state,omitempty"`
	ZipCode         string    `json:"zip_code,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	ManagerID       string    `json:"manager_id,omitempty"`
	ServicesOffered []string  `json:"services_offered,omitempty"`
	Rating          float64   `json:"rating,omitempty"`
	OperatingHours  JSONValue `json:"operating_hours,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Version int64 `json:"-"`
}

// Validate checks the field-level contract of a service center record.
func (c ServiceCenter) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.Validationf("service center name is required")
	}
	if strings.TrimSpace(c.Address) == "" || strings.TrimSpace(c.City) == "" {
		return apperrors.Validationf("service center address and city are required")
	}
	if c.Rating < 0 || c.Rating > 5 {
		return apperrors.Validationf("service center rating %v outside [0,5]", c.Rating)
	}
	return nil
}
