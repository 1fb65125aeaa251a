package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/metrics"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
)

// RunStore persists clustering run records
type RunStore interface {
	Create(ctx context.Context, run *models.ClusteringRun) error
	Finish(ctx context.Context, run *models.ClusteringRun) error
}

// RunTracker records the lifecycle of clustering runs: a run is created as
// running and later marked completed or failed
type RunTracker struct {
	store RunStore
	now   func() time.Time
}

// NewRunTracker creates a tracker over store
func NewRunTracker(store RunStore) *RunTracker {
	return &RunTracker{store: store, now: time.Now}
}

// MarkRunning creates a run record in the running state
func (t *RunTracker) MarkRunning(ctx context.Context, generationID, trigger string, radiusKm float64, minPoints int) (*models.ClusteringRun, error) {
	run := &models.ClusteringRun{
		GenerationID: generationID,
		Trigger:      trigger,
		Status:       models.RunStatusRunning,
		RadiusKm:     radiusKm,
		MinPoints:    minPoints,
		StartedAt:    t.now(),
	}
	if err := t.store.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record clustering run: %w", err)
	}
	return run, nil
}

// MarkCompleted stores the results of a successful run
func (t *RunTracker) MarkCompleted(ctx context.Context, run *models.ClusteringRun, scanned, found int) error {
	run.Status = models.RunStatusCompleted
	run.ComplaintsScanned = scanned
	run.ClustersFound = found
	t.finish(run)

	metrics.ClusteringRuns.WithLabelValues(run.Trigger, models.RunStatusCompleted).Inc()
	return t.store.Finish(ctx, run)
}

// MarkFailed stores the error of a failed run
func (t *RunTracker) MarkFailed(ctx context.Context, run *models.ClusteringRun, cause error) error {
	run.Status = models.RunStatusFailed
	run.ErrorMessage = cause.Error()
	t.finish(run)

	metrics.ClusteringRuns.WithLabelValues(run.Trigger, models.RunStatusFailed).Inc()
	if err := t.store.Finish(ctx, run); err != nil {
		log.Printf("[RunTracker] Warning: failed to mark run %d as failed: %v", run.ID, err)
		return err
	}
	return nil
}

func (t *RunTracker) finish(run *models.ClusteringRun) {
	completed := t.now()
	run.CompletedAt = &completed
	elapsed := completed.Sub(run.StartedAt)
	run.DurationMs = elapsed.Milliseconds()
	metrics.ClusteringRunDuration.WithLabelValues(run.Trigger).Observe(elapsed.Seconds())
}
