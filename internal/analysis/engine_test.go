package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
)

type memoryRunStore struct {
	created  []models.ClusteringRun
	finished []models.ClusteringRun
	err      error
}

func (m *memoryRunStore) Create(ctx context.Context, run *models.ClusteringRun) error {
	if m.err != nil {
		return m.err
	}
	run.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *run)
	return nil
}

func (m *memoryRunStore) Finish(ctx context.Context, run *models.ClusteringRun) error {
	m.finished = append(m.finished, *run)
	return nil
}

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestRunTracker_Completed(t *testing.T) {
	start := time.Date(2026, 1, 19, 8, 0, 0, 0, time.UTC)
	store := &memoryRunStore{}
	tracker := NewRunTracker(store)
	tracker.now = fixedClock(start, start.Add(1200*time.Millisecond))

	run, err := tracker.MarkRunning(context.Background(), "gen-1", models.RunTriggerAPI, 0.1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), run.ID)
	require.Len(t, store.created, 1)
	assert.Equal(t, models.RunStatusRunning, store.created[0].Status)

	require.NoError(t, tracker.MarkCompleted(context.Background(), run, 120, 4))
	require.Len(t, store.finished, 1)
	done := store.finished[0]
	assert.Equal(t, models.RunStatusCompleted, done.Status)
	assert.Equal(t, 120, done.ComplaintsScanned)
	assert.Equal(t, 4, done.ClustersFound)
	assert.Equal(t, int64(1200), done.DurationMs)
	require.NotNil(t, done.CompletedAt)
}

func TestRunTracker_Failed(t *testing.T) {
	start := time.Date(2026, 1, 19, 8, 0, 0, 0, time.UTC)
	store := &memoryRunStore{}
	tracker := NewRunTracker(store)
	tracker.now = fixedClock(start, start.Add(time.Second))

	run, err := tracker.MarkRunning(context.Background(), "gen-2", models.RunTriggerScheduled, 0.5, 3)
	require.NoError(t, err)

	require.NoError(t, tracker.MarkFailed(context.Background(), run, errors.New("database is locked")))
	assert.Equal(t, models.RunStatusFailed, store.finished[0].Status)
	assert.Equal(t, "database is locked", store.finished[0].ErrorMessage)
	assert.Equal(t, int64(1000), store.finished[0].DurationMs)
}

func TestRunTracker_CreateError(t *testing.T) {
	tracker := NewRunTracker(&memoryRunStore{err: errors.New("disk full")})
	_, err := tracker.MarkRunning(context.Background(), "gen", models.RunTriggerAPI, 0.1, 5)
	assert.ErrorContains(t, err, "failed to record clustering run: disk full")
}
