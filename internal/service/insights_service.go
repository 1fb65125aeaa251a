package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/prioritization"
	"github.com/neko-san1432/citizenlink-insights-go/internal/metrics"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
)

// InsightsService builds barangay prioritization reports
type InsightsService struct {
	complaints *repository.ComplaintRepository
	boundaries *repository.BoundaryRepository
	params     clustering.Params
	now        func() time.Time
}

// NewInsightsService creates a new insights service. params are the
// on-demand clustering parameters.
func NewInsightsService(
	complaints *repository.ComplaintRepository,
	boundaries *repository.BoundaryRepository,
	params clustering.Params,
) *InsightsService {
	return &InsightsService{
		complaints: complaints,
		boundaries: boundaries,
		params:     params,
		now:        time.Now,
	}
}

// BarangayPrioritization ranks every barangay for the reporting period
func (s *InsightsService) BarangayPrioritization(ctx context.Context, period string) (*models.PrioritizationReport, error) {
	period = prioritization.NormalizePeriod(period)
	now := s.now()
	start, end := prioritization.DateRange(period, now)

	boundaries, err := s.boundaries.Load()
	if err != nil {
		log.Printf("[Insights] Warning: no barangay boundaries loaded: %v", err)
	}

	var window, historical []models.Complaint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		window, err = s.complaints.ListGeolocated(gctx, models.ComplaintFilter{
			ExcludeStatus: models.WorkflowStatusCancelled,
			SubmittedFrom: &start,
			SubmittedTo:   &end,
		})
		if err != nil {
			return fmt.Errorf("failed to load complaints for period: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		historical, err = s.complaints.ListGeolocated(gctx, models.ComplaintFilter{
			ExcludeStatus: models.WorkflowStatusCancelled,
		})
		if err != nil {
			log.Printf("[Insights] Warning: failed to load historical complaints for averages: %v", err)
			historical = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregator := prioritization.NewAggregator(
		prioritization.NewZoneClassifier(boundaries),
		prioritization.WithParams(s.params),
		prioritization.WithClock(func() time.Time { return now }),
	)

	out := aggregator.Aggregate(prioritization.Input{
		Period:     period,
		Start:      start,
		End:        end,
		Complaints: window,
		Historical: historical,
	})
	metrics.PrioritizationReports.WithLabelValues(period).Inc()
	return out, nil
}
