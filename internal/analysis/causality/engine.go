package causality

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
	"github.com/neko-san1432/citizenlink-insights-go/internal/stats"
)

// Checks holds the pass/fail state of each verification step
type Checks struct {
	Direction bool `json:"direction"`
	Temporal  bool `json:"temporal"`
	Spatial   bool `json:"spatial"`
}

// Details holds the measured values behind a verdict. Pointer fields stay
// nil when the step was skipped or never reached.
type Details struct {
	CategoryA         string   `json:"categoryA"`
	CategoryB         string   `json:"categoryB"`
	TimeDiffHours     *float64 `json:"timeDiffHours"`
	DistanceMeters    *float64 `json:"distanceMeters"`
	DistanceThreshold *float64 `json:"distanceThreshold"`
}

// Result is the verdict for one cause/effect pair
type Result struct {
	IsLinked         bool    `json:"isLinked"`
	Reason           string  `json:"reason"`
	Strength         float64 `json:"strength"`
	Checks           Checks  `json:"checks"`
	Details          Details `json:"details"`
	ProcessingTimeMs float64 `json:"processingTimeMs"`
}

// Link is a verified cause -> effect pair, by index into the input slice
type Link struct {
	CauseIndex   int    `json:"causeIndex"`
	EffectIndex  int    `json:"effectIndex"`
	Verification Result `json:"verification"`
}

// Engine verifies causal links between clusters
type Engine struct {
	rules   *Rules
	workers int
}

// NewEngine creates an engine over rules, DefaultRules when nil
func NewEngine(rules *Rules) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{
		rules:   rules,
		workers: runtime.GOMAXPROCS(0),
	}
}

// Rules returns the engine's causal tables
func (e *Engine) Rules() *Rules {
	return e.rules
}

// VerifyCausality checks whether cause can have produced effect: the matrix
// must allow the category pair, the effect must follow the cause within
// MaxTimeWindow, and the centers must lie within the cause's distance
// threshold. A missing timestamp or center skips that check.
func (e *Engine) VerifyCausality(cause, effect *Cluster) (result Result) {
	start := time.Now()
	defer func() {
		result.ProcessingTimeMs = stats.Round(float64(time.Since(start).Microseconds())/1000, 2)
	}()

	if cause == nil || effect == nil {
		result.Reason = "Invalid cluster input (null)"
		return result
	}

	categoryA := cause.ResolvedCategory()
	categoryB := effect.ResolvedCategory()
	result.Details.CategoryA = categoryA
	result.Details.CategoryB = categoryB

	// direction
	result.Checks.Direction = e.rules.CanCause(categoryA, categoryB)
	if !result.Checks.Direction {
		result.Reason = fmt.Sprintf("Causal matrix rejects: %q cannot cause %q", categoryA, categoryB)
		return result
	}

	// temporal
	timeA, okA := cause.ResolvedTimestamp()
	timeB, okB := effect.ResolvedTimestamp()
	if !okA || !okB {
		result.Checks.Temporal = true
	} else {
		diff := timeB.Sub(timeA)
		hours := diff.Hours()
		rounded := stats.Round(hours, 2)
		result.Details.TimeDiffHours = &rounded

		result.Checks.Temporal = diff > 0 && diff <= MaxTimeWindow
		if !result.Checks.Temporal {
			if diff <= 0 {
				result.Reason = fmt.Sprintf("Temporal violation: Effect (%s) precedes Cause (%s)", categoryB, categoryA)
			} else {
				result.Reason = fmt.Sprintf("Temporal violation: %.1fh exceeds %.0fh window", hours, MaxTimeWindow.Hours())
			}
			return result
		}
	}

	// spatial
	centerA, okA := cause.ResolvedCenter()
	centerB, okB := effect.ResolvedCenter()
	if !okA || !okB {
		result.Checks.Spatial = true
	} else {
		distance := spatial.HaversineDistance(centerA.Lat, centerA.Lon, centerB.Lat, centerB.Lon)
		threshold := e.rules.DistanceThreshold(categoryA)
		rounded := math.Round(distance)
		result.Details.DistanceMeters = &rounded
		result.Details.DistanceThreshold = &threshold

		result.Checks.Spatial = distance <= threshold
		if !result.Checks.Spatial {
			result.Reason = fmt.Sprintf("Spatial violation: %.0fm exceeds %.0fm threshold", rounded, threshold)
			return result
		}
	}

	result.IsLinked = true
	result.Strength = e.rules.Strength(categoryA, categoryB)
	result.Reason = fmt.Sprintf("Causal link verified: %s → %s", categoryA, categoryB)
	return result
}

// FindAllCausalLinks verifies every ordered pair i != j. Rows are evaluated
// concurrently; the output is ordered by cause index, then effect index.
func (e *Engine) FindAllCausalLinks(clusters []Cluster) []Link {
	if len(clusters) < 2 {
		return nil
	}

	rows := make([][]Link, len(clusters))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range clusters {
		i := i
		g.Go(func() error {
			for j := range clusters {
				if i == j {
					continue
				}
				res := e.VerifyCausality(&clusters[i], &clusters[j])
				if res.IsLinked {
					rows[i] = append(rows[i], Link{CauseIndex: i, EffectIndex: j, Verification: res})
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var links []Link
	for _, row := range rows {
		links = append(links, row...)
	}
	return links
}
