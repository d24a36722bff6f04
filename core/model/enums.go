package model

import "github.com/opfleet/fleethealth/core/apperrors"

// VehicleStatus is the three-state health badge of a vehicle.
// It is persisted as a string and is never empty.
type VehicleStatus string

const (
	StatusHealthy  VehicleStatus = "healthy"
	StatusWarning  VehicleStatus = "warning"
	StatusCritical VehicleStatus = "critical"
)

// Valid reports whether s is a member of the closed set.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusHealthy, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// ParseVehicleStatus validates a raw status value.
func ParseVehicleStatus(raw string) (VehicleStatus, error) {
	s := VehicleStatus(raw)
	if !s.Valid() {
		return "", apperrors.Validationf("unknown vehicle status %q", raw)
	}
	return s, nil
}

// BookingStatus is the lifecycle state of a maintenance booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is a member of the closed set.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// ParseBookingStatus validates a raw booking status value.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(raw)
	if !s.Valid() {
		return "", apperrors.Validationf("unknown booking status %q", raw)
	}
	return s, nil
}

// ComponentType is the physical subsystem a prediction concerns.
type ComponentType string

const (
	ComponentEngine        ComponentType = "engine"
	ComponentTransmission  ComponentType = "transmission"
	ComponentBrakes        ComponentType = "brakes"
	ComponentBattery       ComponentType = "battery"
	ComponentSuspension    ComponentType = "suspension"
	ComponentElectrical    ComponentType = "electrical"
	ComponentCoolingSystem ComponentType = "cooling_system"
	ComponentFuelSystem    ComponentType = "fuel_system"
)

// Valid reports whether c is a member of the closed set.
func (c ComponentType) Valid() bool {
	switch c {
	case ComponentEngine, ComponentTransmission, ComponentBrakes, ComponentBattery,
		ComponentSuspension, ComponentElectrical, ComponentCoolingSystem, ComponentFuelSystem:
		return true
	}
	return false
}

// ParseComponentType validates a raw component value.
func ParseComponentType(raw string) (ComponentType, error) {
	c := ComponentType(raw)
	if !c.Valid() {
		return "", apperrors.Validationf("unknown component type %q", raw)
	}
	return c, nil
}

// UserRole identifies the capability class of a profile. Role enforcement
// happens at the boundary; core services are role-agnostic.
type UserRole string

const (
	RoleVehicleOwner         UserRole = "vehicle_owner"
	RoleServiceCenterManager UserRole = "service_center_manager"
	RoleFleetAdmin           UserRole = "fleet_admin"
	RoleManufacturingTeam    UserRole = "manufacturing_team"
	RolePlatformAdmin        UserRole = "platform_admin"
)

// Valid reports whether r is a member of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleVehicleOwner, RoleServiceCenterManager, RoleFleetAdmin,
		RoleManufacturingTeam, RolePlatformAdmin:
		return true
	}
	return false
}

// ParseUserRole validates a raw role value.
func ParseUserRole(raw string) (UserRole, error) {
	r := UserRole(raw)
	if !r.Valid() {
		return "", apperrors.Validationf("unknown user role %q", raw)
	}
	return r, nil
}
