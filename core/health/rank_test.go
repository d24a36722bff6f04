package health

import (
	"testing"
	"time"

	"github.com/opfleet/fleethealth/core/model"
)

func TestRankPredictionsOrderAndTruncation(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var preds []model.Prediction
	for i := 0; i < 8; i++ {
		preds = append(preds, model.Prediction{
			ID:                 string(rune('a' + i)),
			FailureProbability: float64(i) / 10,
			ConfidenceScore:    0.5,
			CreatedAt:          base,
		})
	}
	ranked := RankPredictions(preds)
	if len(ranked) != MaxRanked {
		t.Fatalf("expected %d results, got %d", MaxRanked, len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].FailureProbability > ranked[i-1].FailureProbability {
			t.Fatalf("not sorted by probability desc at %d", i)
		}
	}
	if ranked[0].FailureProbability != 0.7 {
		t.Fatalf("expected highest probability first, got %v", ranked[0].FailureProbability)
	}
}

func TestRankPredictionsTieBreaks(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	preds := []model.Prediction{
		{ID: "old-low-conf", FailureProbability: 0.5, ConfidenceScore: 0.4, CreatedAt: base},
		{ID: "high-conf", FailureProbability: 0.5, ConfidenceScore: 0.9, CreatedAt: base},
		{ID: "recent-low-conf", FailureProbability: 0.5, ConfidenceScore: 0.4, CreatedAt: base.Add(time.Hour)},
	}
	ranked := RankPredictions(preds)
	want := []string{"high-conf", "recent-low-conf", "old-low-conf"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}
}

func TestRankPredictionsDeterministic(t *testing.T) {
	preds := []model.Prediction{
		{ID: "a", FailureProbability: 0.6, ConfidenceScore: 0.5},
		{ID: "b", FailureProbability: 0.9, ConfidenceScore: 0.5},
		{ID: "c", FailureProbability: 0.6, ConfidenceScore: 0.8},
	}
	first := RankPredictions(preds)
	second := RankPredictions(preds)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("ordering changed between calls at %d", i)
		}
	}
}

func TestRankPredictionsEmpty(t *testing.T) {
	if got := RankPredictions(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestRankPredictionsDoesNotMutateInput(t *testing.T) {
	preds := []model.Prediction{
		{ID: "a", FailureProbability: 0.1},
		{ID: "b", FailureProbability: 0.9},
	}
	RankPredictions(preds)
	if preds[0].ID != "a" {
		t.Fatalf("input slice was reordered")
	}
}

func TestRankPredictionsCriticalBrakesFirst(t *testing.T) {
	preds := []model.Prediction{
		{ID: "battery", Component: model.ComponentBattery, FailureProbability: 0.5, ConfidenceScore: 0.6},
		{ID: "brakes", Component: model.ComponentBrakes, FailureProbability: 0.8, ConfidenceScore: 0.9, IsCritical: true},
	}
	ranked := RankPredictions(preds)
	if ranked[0].ID != "brakes" || ranked[1].ID != "battery" {
		t.Fatalf("unexpected order: %s, %s", ranked[0].ID, ranked[1].ID)
	}
	if !ranked[0].IsCritical {
		t.Fatalf("criticality flag must be preserved through ranking")
	}
}
