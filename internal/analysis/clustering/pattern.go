package clustering

import (
	"sort"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/stats"
)

// Pattern thresholds, in days
const (
	outbreakMaxMeanGap   = 2.0
	outbreakMinMembers   = 5
	recurringMaxVariance = 10.0
	recurringMaxMeanGap  = 14.0
)

// DetectPatternType classifies a cluster from the gaps between consecutive
// submissions: outbreak for a fast burst, recurring for a steady rhythm.
func DetectPatternType(members []Record) string {
	if len(members) < 3 {
		return models.PatternNormal
	}

	sorted := make([]Record, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
	})

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].SubmittedAt.Sub(sorted[i-1].SubmittedAt).Hours()/24)
	}

	mean := stats.Mean(gaps)
	if mean < outbreakMaxMeanGap && len(members) >= outbreakMinMembers {
		return models.PatternOutbreak
	}

	if stats.PopulationVariance(gaps) < recurringMaxVariance && mean < recurringMaxMeanGap {
		return models.PatternRecurring
	}

	return models.PatternNormal
}
