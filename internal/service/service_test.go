package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/causality"
	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/prioritization"
	"github.com/neko-san1432/citizenlink-insights-go/internal/database"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db         *sql.DB
	complaints *repository.ComplaintRepository
	clusters   *repository.ClusterRepository
	runs       *repository.ClusteringRunRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "insights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationManager(db).RunMigrations(context.Background()))

	return &fixture{
		db:         db,
		complaints: repository.NewComplaintRepository(db),
		clusters:   repository.NewClusterRepository(db),
		runs:       repository.NewClusteringRunRepository(db),
	}
}

func fptr(v float64) *float64 { return &v }

func complaintAt(id, typ string, lat, lng float64, at time.Time) models.Complaint {
	return models.Complaint{
		ID:             id,
		Type:           typ,
		Priority:       models.PriorityMedium,
		WorkflowStatus: "new",
		Latitude:       fptr(lat),
		Longitude:      fptr(lng),
		SubmittedAt:    at,
	}
}

func (f *fixture) seed(t *testing.T, complaints ...models.Complaint) {
	t.Helper()
	for i := range complaints {
		require.NoError(t, f.complaints.Create(context.Background(), &complaints[i]))
	}
}

// seedNeighbourhood stores five complaints about 11m apart and one 1km+ away
func (f *fixture) seedNeighbourhood(t *testing.T) {
	f.seed(t,
		complaintAt("c1", "Pothole", 6.7500, 125.35, now.Add(-5*time.Hour)),
		complaintAt("c2", "Pothole", 6.7501, 125.35, now.Add(-4*time.Hour)),
		complaintAt("c3", "Pothole", 6.7502, 125.35, now.Add(-3*time.Hour)),
		complaintAt("c4", "Pothole", 6.7503, 125.35, now.Add(-2*time.Hour)),
		complaintAt("c5", "Flooding", 6.7504, 125.35, now.Add(-time.Hour)),
		complaintAt("c6", "Pothole", 6.8000, 125.35, now.Add(-time.Hour)),
	)
}

func TestClusteringService_DetectClusters(t *testing.T) {
	f := newFixture(t)
	f.seedNeighbourhood(t)
	svc := NewClusteringService(f.complaints, f.clusters, f.runs)
	ctx := context.Background()

	res, err := svc.DetectClusters(ctx, DetectOptions{RadiusKm: 0.5, MinComplaintsPerCluster: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, res.ComplaintsScanned)
	require.Len(t, res.Clusters, 1)
	assert.ElementsMatch(t, []string{"c1", "c2", "c3", "c4", "c5"}, res.Clusters[0].ComplaintIDs)
	assert.Equal(t, "Pothole", res.Clusters[0].DominantCategory)
	assert.Equal(t, res.GenerationID, res.Clusters[0].GenerationID)

	active, err := svc.ListActiveClusters(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, res.Clusters[0].ID, active[0].ID)

	runs, err := svc.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, models.RunTriggerAPI, runs[0].Trigger)
	assert.Equal(t, 1, runs[0].ClustersFound)
	assert.Equal(t, 6, runs[0].ComplaintsScanned)

	t.Run("rerun replaces the active generation", func(t *testing.T) {
		again, err := svc.DetectClusters(ctx, DetectOptions{RadiusKm: 0.5, MinComplaintsPerCluster: 2, Trigger: models.RunTriggerManual})
		require.NoError(t, err)
		assert.NotEqual(t, res.GenerationID, again.GenerationID)

		active, err := svc.ListActiveClusters(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, again.GenerationID, active[0].GenerationID)
	})

	t.Run("type filter", func(t *testing.T) {
		res, err := svc.DetectClusters(ctx, DetectOptions{RadiusKm: 0.5, MinComplaintsPerCluster: 2, Type: "Flooding"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.ComplaintsScanned)
		assert.Empty(t, res.Clusters)
	})
}

func TestClusteringService_DetectClustersValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewClusteringService(f.complaints, f.clusters, f.runs)
	ctx := context.Background()

	from := now
	to := now.Add(-time.Hour)

	tests := []struct {
		name  string
		opts  DetectOptions
		field string
	}{
		{"zero radius", DetectOptions{RadiusKm: 0, MinComplaintsPerCluster: 3}, "radius_km"},
		{"one point", DetectOptions{RadiusKm: 0.5, MinComplaintsPerCluster: 1}, "min_complaints"},
		{"reversed dates", DetectOptions{RadiusKm: 0.5, MinComplaintsPerCluster: 3, DateFrom: &from, DateTo: &to}, "date_from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DetectClusters(ctx, tt.opts)
			var verr *clustering.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	runs, err := svc.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestClusteringService_RunClusteringFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.seedNeighbourhood(t)
	svc := NewClusteringService(f.complaints, f.clusters, f.runs)
	svc.clusterer = failingClusterer{}

	_, err := svc.DetectClusters(context.Background(), DetectOptions{RadiusKm: 0.5, MinComplaintsPerCluster: 2, Trigger: models.RunTriggerScheduled})
	require.Error(t, err)

	runs, err := svc.ListRuns(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "clusterer exploded", runs[0].ErrorMessage)
}

type failingClusterer struct{}

func (failingClusterer) Cluster([]clustering.Record, clustering.Params) ([]clustering.Cluster, error) {
	return nil, errors.New("clusterer exploded")
}

func TestClusteringService_RunClustering(t *testing.T) {
	f := newFixture(t)
	f.seedNeighbourhood(t)
	svc := NewClusteringService(f.complaints, f.clusters, f.runs)

	found, err := svc.RunClustering(context.Background(), scheduler.Request{RadiusKm: 0.5, MinPoints: 2, Trigger: models.RunTriggerScheduled})
	require.NoError(t, err)
	assert.Equal(t, 1, found)
}

func TestClusteringService_FindSimilarInRadius(t *testing.T) {
	f := newFixture(t)
	f.seedNeighbourhood(t)
	svc := NewClusteringService(f.complaints, f.clusters, f.runs)
	ctx := context.Background()

	nearby, err := svc.FindSimilarInRadius(ctx, 6.75, 125.35, 0.5, SimilarFilters{})
	require.NoError(t, err)
	require.Len(t, nearby, 5)
	assert.Equal(t, "c1", nearby[0].ID)
	assert.InDelta(t, 0, nearby[0].DistanceKm, 1e-9)
	for i := 1; i < len(nearby); i++ {
		assert.LessOrEqual(t, nearby[i-1].DistanceKm, nearby[i].DistanceKm)
	}

	potholes, err := svc.FindSimilarInRadius(ctx, 6.75, 125.35, 0.5, SimilarFilters{Type: "Pothole"})
	require.NoError(t, err)
	assert.Len(t, potholes, 4)

	t.Run("default radius", func(t *testing.T) {
		nearby, err := svc.FindSimilarInRadius(ctx, 6.75, 125.35, 0, SimilarFilters{})
		require.NoError(t, err)
		assert.Len(t, nearby, 5)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		_, err := svc.FindSimilarInRadius(ctx, 95, 125.35, 0.5, SimilarFilters{})
		var verr *clustering.ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func TestClusteringService_GetNearestSimilar(t *testing.T) {
	f := newFixture(t)
	f.seedNeighbourhood(t)
	svc := NewClusteringService(f.complaints, f.clusters, f.runs)
	ctx := context.Background()

	nearest, err := svc.GetNearestSimilar(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, nearest, 3)
	assert.Equal(t, "c2", nearest[0].ID)
	assert.Equal(t, "c3", nearest[1].ID)
	assert.Equal(t, "c4", nearest[2].ID)

	limited, err := svc.GetNearestSimilar(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = svc.GetNearestSimilar(ctx, "missing", 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCausalityService_Analyze(t *testing.T) {
	svc := NewCausalityService(nil)

	origin := causality.Cluster{Category: "Pipe Leak", Timestamp: causality.At(now), Center: causality.LatLng(6.75, 125.35)}
	flat, flng := spatial.DestinationPoint(6.75, 125.35, 0, 30)
	tlat, tlng := spatial.DestinationPoint(6.75, 125.35, 0, 60)
	clusters := []causality.Cluster{
		origin,
		{Category: "Flooding", Timestamp: causality.At(now.Add(time.Hour)), Center: causality.LatLng(flat, flng)},
		{Category: "Traffic", Timestamp: causality.At(now.Add(2 * time.Hour)), Center: causality.LatLng(tlat, tlng)},
	}

	analysis := svc.Analyze(clusters)
	assert.Equal(t, []int{0}, analysis.RootCauses)
	assert.Equal(t, []int{2}, analysis.TerminalEffects)
	require.Len(t, analysis.Chains, 1)
	assert.Equal(t, "Pipe Leak → Flooding → Traffic", analysis.Chains[0].Description)
	assert.Len(t, analysis.Chains[0].Steps, 3)

	verdict := svc.Verify(&clusters[0], &clusters[1])
	assert.True(t, verdict.IsLinked)
	assert.Equal(t, 0.92, verdict.Strength)
}

func TestCausalityService_AnalyzeActiveClusters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lat, lng := spatial.DestinationPoint(6.75, 125.35, 0, 100)
	require.NoError(t, f.clusters.ReplaceActive(ctx, []models.ComplaintCluster{
		{ID: "k1", GenerationID: "g", ClusterName: "Cluster 1 - Flooding", CenterLat: 6.75, CenterLng: 125.35,
			ComplaintIDs: []string{"a"}, DominantCategory: "Flooding", FirstReportedAt: now,
			Status: models.ClusterStatusActive, CreatedAt: now},
		{ID: "k2", GenerationID: "g", ClusterName: "Cluster 2 - Traffic", CenterLat: lat, CenterLng: lng,
			ComplaintIDs: []string{"b"}, DominantCategory: "Traffic", FirstReportedAt: now.Add(time.Hour),
			Status: models.ClusterStatusActive, CreatedAt: now},
	}))

	svc := NewCausalityService(f.clusters)
	analysis, err := svc.AnalyzeActiveClusters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, analysis.Graph.Metadata.TotalEdges)
	require.Len(t, analysis.Chains, 1)
	assert.Equal(t, "Flooding → Traffic", analysis.Chains[0].Description)
}

const aplayaBoundary = `[
  {"name": "Aplaya", "geojson": {"type": "Polygon", "coordinates": [[[125.30, 6.70], [125.40, 6.70], [125.40, 6.80], [125.30, 6.80], [125.30, 6.70]]]}}
]`

func TestInsightsService_BarangayPrioritization(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "boundaries.json")
	require.NoError(t, os.WriteFile(path, []byte(aplayaBoundary), 0o644))

	cancelled := complaintAt("x1", "Pothole", 6.75, 125.35, now.Add(-time.Hour))
	cancelled.WorkflowStatus = models.WorkflowStatusCancelled
	f.seed(t,
		complaintAt("a1", "Pothole", 6.75, 125.35, now.Add(-3*time.Hour)),
		complaintAt("a2", "Pothole", 6.75, 125.35, now.Add(-2*time.Hour)),
		complaintAt("a3", "Pothole", 6.75, 125.35, now.Add(-time.Hour)),
		complaintAt("old", "Pothole", 6.75, 125.35, now.AddDate(0, -2, 0)),
		complaintAt("far", "Pothole", 7.50, 126.00, now.Add(-time.Hour)),
		cancelled,
	)

	svc := NewInsightsService(f.complaints, repository.NewBoundaryRepository(path),
		clustering.Params{RadiusKm: 0.1, MinPoints: 2})
	svc.now = func() time.Time { return now }

	report, err := svc.BarangayPrioritization(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Equal(t, prioritization.PeriodWeekly, report.Period)
	assert.Equal(t, "2026-03-15T23:59:59.999Z", report.EndDate)
	require.Len(t, report.Barangays, len(prioritization.Barangays))

	top := report.Barangays[0]
	assert.Equal(t, "Aplaya", top.Barangay)
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 3, top.ComplaintCount)
	assert.Equal(t, 1, top.ClusterCount)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, top.ComplaintIDs)
	assert.Equal(t, 4.0, top.Averages.Yearly)
}

func TestInsightsService_MissingBoundariesStillReports(t *testing.T) {
	f := newFixture(t)
	f.seed(t, complaintAt("a1", "Pothole", 6.75, 125.35, now.Add(-time.Hour)))

	svc := NewInsightsService(f.complaints, repository.NewBoundaryRepository(filepath.Join(t.TempDir(), "none.json")),
		clustering.DefaultParams())
	svc.now = func() time.Time { return now }

	report, err := svc.BarangayPrioritization(context.Background(), prioritization.PeriodDaily)
	require.NoError(t, err)
	require.Len(t, report.Barangays, len(prioritization.Barangays))
	for _, row := range report.Barangays {
		assert.Zero(t, row.ComplaintCount)
	}
}
