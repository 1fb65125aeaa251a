package stats

import (
	"math"
	"sort"
)

// CutPoint returns sorted[floor(n*q)] from an ascending copy of values,
// clamped to the last element. No interpolation is done, so the result is
// always one of the observed values.
func CutPoint(values []int, q float64) int {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	idx := int(math.Floor(float64(len(sorted)) * q))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
