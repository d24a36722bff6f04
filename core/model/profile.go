package model

import (
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

// Profile is the authenticated identity attached to vehicles, bookings and
// service centers. The core never authenticates; it only consumes profiles.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the field-level contract of a profile record.
func (p Profile) Validate() error {
	if p.ID == "" {
		return apperrors.Validationf("profile id is required")
	}
	if !p.Role.Valid() {
		return apperrors.Validationf("unknown user role %q", string(p.Role))
	}
	return nil
}
