// Package fleet rolls vehicle health statuses up into fleet-wide counts.
package fleet

import "github.com/opfleet/fleethealth/core/model"

// Summary holds exact status counts over a set of vehicles.
// Healthy+Warning+Critical always equals Total: status is exhaustive and
// mutually exclusive by construction.
type Summary struct {
	Total    int `json:"total"`
	Healthy  int `json:"healthy"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Aggregate folds the given vehicles into a Summary. Order-independent and
// recomputed on every read; fleets in this domain are small enough that
// incremental maintenance would be wasted engineering.
func Aggregate(vehicles []model.Vehicle) Summary {
	s := Summary{Total: len(vehicles)}
	for _, v := range vehicles {
		switch v.Status {
		case model.StatusWarning:
			s.Warning++
		case model.StatusCritical:
			s.Critical++
		default:
			// Status defaults to healthy at registration and is never empty
			// in stored rows.
			s.Healthy++
		}
	}
	return s
}
