package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis"
	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/metrics"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/report"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
)

// Similar-complaint search limits
const (
	DefaultSimilarRadiusKm = 0.5
	SimilarCandidateLimit  = 200
	DefaultNearestLimit    = 10
)

// DetectOptions are the inputs of one clustering run
type DetectOptions struct {
	RadiusKm                float64
	MinComplaintsPerCluster int
	Type                    string
	DateFrom                *time.Time
	DateTo                  *time.Time
	Trigger                 string
}

// DetectResult describes a completed clustering run
type DetectResult struct {
	RunID             int64                     `json:"run_id"`
	GenerationID      string                    `json:"generation_id"`
	ComplaintsScanned int                       `json:"complaints_scanned"`
	Clusters          []models.ComplaintCluster `json:"clusters"`
}

// SimilarFilters narrow a radius search
type SimilarFilters struct {
	Type     string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// ClusteringService detects, stores and queries complaint clusters
type ClusteringService struct {
	complaints *repository.ComplaintRepository
	clusters   *repository.ClusterRepository
	runs       *repository.ClusteringRunRepository
	tracker    *analysis.RunTracker
	clusterer  clustering.Clusterer
	now        func() time.Time
}

// NewClusteringService creates a new clustering service
func NewClusteringService(
	complaints *repository.ComplaintRepository,
	clusters *repository.ClusterRepository,
	runs *repository.ClusteringRunRepository,
) *ClusteringService {
	return &ClusteringService{
		complaints: complaints,
		clusters:   clusters,
		runs:       runs,
		tracker:    analysis.NewRunTracker(runs),
		clusterer:  clustering.DBSCANClusterer{},
		now:        time.Now,
	}
}

var _ scheduler.Detector = (*ClusteringService)(nil)

// DetectClusters clusters the matching geolocated complaints and replaces the
// active generation with the result
func (s *ClusteringService) DetectClusters(ctx context.Context, opts DetectOptions) (*DetectResult, error) {
	params := clustering.Params{
		RadiusKm:  opts.RadiusKm,
		MinPoints: opts.MinComplaintsPerCluster,
		DateFrom:  opts.DateFrom,
		DateTo:    opts.DateTo,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	trigger := opts.Trigger
	if trigger == "" {
		trigger = models.RunTriggerAPI
	}

	generationID := uuid.NewString()
	run, err := s.tracker.MarkRunning(ctx, generationID, trigger, params.RadiusKm, params.MinPoints)
	if err != nil {
		return nil, err
	}

	complaints, err := s.complaints.ListGeolocated(ctx, models.ComplaintFilter{
		Type:          opts.Type,
		SubmittedFrom: opts.DateFrom,
		SubmittedTo:   opts.DateTo,
	})
	if err != nil {
		return nil, s.fail(ctx, run, fmt.Errorf("failed to load complaints: %w", err))
	}

	records := clustering.RecordsFromComplaints(complaints)
	found, err := s.clusterer.Cluster(records, params)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	createdAt := s.now()
	rows := make([]models.ComplaintCluster, len(found))
	for i := range found {
		rows[i] = found[i].ToModel(uuid.NewString(), generationID)
		rows[i].CreatedAt = createdAt
	}

	if err := s.clusters.ReplaceActive(ctx, rows); err != nil {
		return nil, s.fail(ctx, run, fmt.Errorf("failed to save clusters: %w", err))
	}

	if err := s.tracker.MarkCompleted(ctx, run, len(records), len(rows)); err != nil {
		log.Printf("[ClusteringService] Warning: failed to mark run %d completed: %v", run.ID, err)
	}
	metrics.ActiveClusters.Set(float64(len(rows)))

	log.Printf("[ClusteringService] Run %d (%s): %d clusters from %d complaints (radius %.2fkm, min %d)",
		run.ID, trigger, len(rows), len(records), params.RadiusKm, params.MinPoints)

	return &DetectResult{
		RunID:             run.ID,
		GenerationID:      generationID,
		ComplaintsScanned: len(records),
		Clusters:          rows,
	}, nil
}

// RunClustering runs DetectClusters for the scheduler
func (s *ClusteringService) RunClustering(ctx context.Context, req scheduler.Request) (int, error) {
	res, err := s.DetectClusters(ctx, DetectOptions{
		RadiusKm:                req.RadiusKm,
		MinComplaintsPerCluster: req.MinPoints,
		Trigger:                 req.Trigger,
	})
	if err != nil {
		return 0, err
	}
	return len(res.Clusters), nil
}

func (s *ClusteringService) fail(ctx context.Context, run *models.ClusteringRun, cause error) error {
	log.Printf("[ClusteringService] Error: run %d failed: %v", run.ID, cause)
	report.ReportErrorWithSentryOptions(cause, report.SentryReportOptions{
		Tags: map[string]string{"component": "clustering", "trigger": run.Trigger},
		ExtraContext: map[string]interface{}{
			"run_id":     run.ID,
			"radius_km":  run.RadiusKm,
			"min_points": run.MinPoints,
		},
	})
	if err := s.tracker.MarkFailed(ctx, run, cause); err != nil {
		log.Printf("[ClusteringService] Warning: could not record failure of run %d: %v", run.ID, err)
	}
	return cause
}

// FindSimilarInRadius returns complaints within radiusKm of (lat, lng),
// nearest first
func (s *ClusteringService) FindSimilarInRadius(ctx context.Context, lat, lng, radiusKm float64, filters SimilarFilters) ([]models.NearbyComplaint, error) {
	if !spatial.ValidCoordinates(lat, lng) {
		return nil, &clustering.ValidationError{Field: "lat", Message: "Valid latitude and longitude are required"}
	}
	if radiusKm <= 0 {
		radiusKm = DefaultSimilarRadiusKm
	}

	candidates, err := s.complaints.ListGeolocated(ctx, models.ComplaintFilter{
		Type:          filters.Type,
		Status:        filters.Status,
		SubmittedFrom: filters.DateFrom,
		SubmittedTo:   filters.DateTo,
		NewestFirst:   true,
		Limit:         SimilarCandidateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find similar complaints: %w", err)
	}

	nearby := []models.NearbyComplaint{}
	for _, c := range candidates {
		clat, clng, ok := c.Coordinates()
		if !ok {
			continue
		}
		d := spatial.HaversineDistanceKm(lat, lng, clat, clng)
		if d <= radiusKm {
			nearby = append(nearby, models.NearbyComplaint{Complaint: c, DistanceKm: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}

// GetNearestSimilar returns same-type complaints near the given complaint,
// excluding itself
func (s *ClusteringService) GetNearestSimilar(ctx context.Context, complaintID string, limit int) ([]models.NearbyComplaint, error) {
	if limit <= 0 {
		limit = DefaultNearestLimit
	}

	c, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	lat, lng, ok := c.Coordinates()
	if !ok || !spatial.ValidCoordinates(lat, lng) {
		return []models.NearbyComplaint{}, nil
	}

	nearby, err := s.FindSimilarInRadius(ctx, lat, lng, DefaultSimilarRadiusKm, SimilarFilters{Type: c.Type})
	if err != nil {
		return nil, err
	}

	out := make([]models.NearbyComplaint, 0, limit)
	for _, n := range nearby {
		if n.ID == complaintID {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListActiveClusters returns the active generation
func (s *ClusteringService) ListActiveClusters(ctx context.Context) ([]models.ComplaintCluster, error) {
	return s.clusters.ListActive(ctx)
}

// ListRuns returns clustering runs newest first
func (s *ClusteringService) ListRuns(ctx context.Context, limit, offset int) ([]*models.ClusteringRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.runs.List(ctx, "", limit, offset)
}
