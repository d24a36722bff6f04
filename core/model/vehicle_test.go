package model

import (
	"testing"
	"time"

	"github.com/opfleet/fleethealth/core/apperrors"
)

func validVehicle() Vehicle {
	return Vehicle{
		ID:      "veh-1",
		OwnerID: "owner-1",
		Make:    "Toyota",
		Model:   "Camry",
		Year:    2021,
		VIN:     "1HGBH41JXMN109186",
		Mileage: 42000,
		Status:  StatusHealthy,
	}
}

func TestVehicleValidate(t *testing.T) {
	if err := validVehicle().Validate(); err != nil {
		t.Fatalf("valid vehicle rejected: %v", err)
	}
}

func TestVehicleValidateRejectsBadFields(t *testing.T) {
	cases := map[string]func(*Vehicle){
		"missing owner":    func(v *Vehicle) { v.OwnerID = "" },
		"missing make":     func(v *Vehicle) { v.Make = "" },
		"year too small":   func(v *Vehicle) { v.Year = 1899 },
		"year in future":   func(v *Vehicle) { v.Year = time.Now().Year() + 2 },
		"short vin":        func(v *Vehicle) { v.VIN = "ABC123" },
		"lowercase vin":    func(v *Vehicle) { v.VIN = "1hgbh41jxmn109186" },
		"negative mileage": func(v *Vehicle) { v.Mileage = -1 },
		"bad status":       func(v *Vehicle) { v.Status = "totaled" },
	}
	for name, mutate := range cases {
		v := validVehicle()
		mutate(&v)
		err := v.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if !apperrors.IsValidation(err) {
			t.Fatalf("%s: expected validation kind, got %v", name, err)
		}
	}
}

func TestNormalizeVIN(t *testing.T) {
	if got := NormalizeVIN("  1hgbh41jxmn109186 "); got != "1HGBH41JXMN109186" {
		t.Fatalf("unexpected normalized vin %q", got)
	}
}
