package model

import (
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

// TirePressure holds per-wheel pressure readings in PSI.
type TirePressure struct {
	FrontLeft  float64 `json:"front_left"`
	FrontRight float64 `json:"front_right"`
	RearLeft   float64 `json:"rear_left"`
	RearRight  float64 `json:"rear_right"`
}

// Telemetry is an append-only snapshot of one vehicle's sensors.
// Records are immutable once written.
type Telemetry struct {
	ID                string        `json:"id"`
	VehicleID         string        `json:"vehicle_id"`
	Timestamp         time.Time     `json:"timestamp"`
	EngineTemp        *float64      `json:"engine_temp,omitempty"`
	OilPressure       *float64      `json:"oil_pressure,omitempty"`
	BatteryVoltage    *float64      `json:"battery_voltage,omitempty"`
	BrakePadThickness *float64      `json:"brake_pad_thickness,omitempty"`
	TirePressure      *TirePressure `json:"tire_pressure,omitempty"`
	ErrorCodes        []string      `json:"error_codes,omitempty"`
	RawData           JSONValue     `json:"raw_data,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Validate checks the field-level contract of a telemetry record.
func (t Telemetry) Validate() error {
	if t.VehicleID == "" {
		return apperrors.Validationf("telemetry vehicle_id is required")
	}
	if t.Timestamp.IsZero() {
		return apperrors.Validationf("telemetry timestamp is required")
	}
	return nil
}
