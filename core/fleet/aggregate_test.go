package fleet

import (
	"testing"

	"github.com/opfleet/fleethealth/core/model"
)

func TestAggregateCounts(t *testing.T) {
	vehicles := []model.Vehicle{
		{ID: "a", Status: model.StatusHealthy},
		{ID: "b", Status: model.StatusHealthy},
		{ID: "c", Status: model.StatusWarning},
		{ID: "d", Status: model.StatusCritical},
	}
	s := Aggregate(vehicles)
	if s.Total != 4 || s.Healthy != 2 || s.Warning != 1 || s.Critical != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.Total != 0 || s.Healthy != 0 || s.Warning != 0 || s.Critical != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestAggregatePartitionInvariant(t *testing.T) {
	fleets := [][]model.Vehicle{
		nil,
		{{Status: model.StatusHealthy}},
		{{Status: model.StatusWarning}, {Status: model.StatusCritical}},
		{{Status: model.StatusCritical}, {Status: model.StatusCritical}, {Status: model.StatusHealthy}},
	}
	for i, vehicles := range fleets {
		s := Aggregate(vehicles)
		if s.Healthy+s.Warning+s.Critical != s.Total {
			t.Fatalf("fleet %d: partition broken: %+v", i, s)
		}
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := []model.Vehicle{{Status: model.StatusWarning}, {Status: model.StatusHealthy}}
	b := []model.Vehicle{{Status: model.StatusHealthy}, {Status: model.StatusWarning}}
	if Aggregate(a) != Aggregate(b) {
		t.Fatalf("aggregation must be order independent")
	}
}
