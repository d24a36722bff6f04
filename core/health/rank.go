package health

import (
	"sort"

	"github.com/opfleet/fleethealth/core/model"
)

// MaxRanked bounds how many predictions are surfaced per vehicle. Only the
// highest-risk signals warrant operator attention at any one time.
const MaxRanked = 5

// RankPredictions orders predictions by failure probability descending,
// breaking ties by confidence descending then recency, and truncates to
// MaxRanked. The ordering is fully deterministic. An empty input yields an
// empty slice, not an error: "no predictions yet" is a valid state.
func RankPredictions(preds []model.Prediction) []model.Prediction {
	ranked := make([]model.Prediction, len(preds))
	copy(ranked, preds)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.FailureProbability != b.FailureProbability {
			return a.FailureProbability > b.FailureProbability
		}
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if len(ranked) > MaxRanked {
		ranked = ranked[:MaxRanked]
	}
	return ranked
}
