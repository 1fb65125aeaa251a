package prioritization

import (
	"log"
	"sort"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/stats"
)

// Score weights
const (
	ComplaintWeight    = 1
	ClusterWeight      = 5
	UrgentWeight       = 3
	HighPriorityWeight = 2
)

// MinComplaintsForClustering is the window size below which no on-demand
// clustering is attempted
const MinComplaintsForClustering = 3

// Input is one prioritization request. Complaints are the non-cancelled
// geolocated complaints in [Start, End]; Historical is every non-cancelled
// geolocated complaint and may be nil when it could not be loaded.
type Input struct {
	Period     string
	Start      time.Time
	End        time.Time
	Complaints []models.Complaint
	Historical []models.Complaint
}

// Aggregator ranks zones by complaint volume, clusters and priority
type Aggregator struct {
	classifier *ZoneClassifier
	clusterer  clustering.Clusterer
	params     clustering.Params
	now        func() time.Time
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClusterer replaces the on-demand clusterer
func WithClusterer(c clustering.Clusterer) Option {
	return func(a *Aggregator) { a.clusterer = c }
}

// WithParams sets the on-demand clustering parameters
func WithParams(p clustering.Params) Option {
	return func(a *Aggregator) { a.params = p }
}

// WithClock sets the clock used for historical averages
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an aggregator over a zone classifier
func NewAggregator(classifier *ZoneClassifier, opts ...Option) *Aggregator {
	a := &Aggregator{
		classifier: classifier,
		clusterer:  clustering.DBSCANClusterer{},
		params:     clustering.DefaultParams(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate builds the ranked report for in
func (a *Aggregator) Aggregate(in Input) *models.PrioritizationReport {
	complaints := make([]models.Complaint, 0, len(in.Complaints))
	for _, c := range in.Complaints {
		if c.WorkflowStatus != models.WorkflowStatusCancelled {
			complaints = append(complaints, c)
		}
	}

	zoneOf := a.classifier.ClassifyComplaints(complaints)
	log.Printf("[Insights] Classified %d out of %d complaints into barangays", len(zoneOf), len(complaints))

	clusters := a.clusterWindow(complaints, in.Period)

	rows := make(map[string]*models.BarangayPrioritization, len(Barangays))
	ordered := make([]*models.BarangayPrioritization, 0, len(Barangays))
	for _, name := range Barangays {
		row := &models.BarangayPrioritization{Barangay: name, ComplaintIDs: []string{}}
		rows[name] = row
		ordered = append(ordered, row)
	}

	// Phase 1: accumulate
	for _, c := range complaints {
		zone, ok := zoneOf[c.ID]
		if !ok {
			log.Printf("[Insights] Warning: complaint %s could not be classified into a barangay", c.ID)
			continue
		}
		row, listed := rows[zone]
		if !listed {
			continue
		}
		row.ComplaintCount++
		row.ComplaintIDs = append(row.ComplaintIDs, c.ID)
		switch c.Priority {
		case models.PriorityUrgent:
			row.UrgentCount++
		case models.PriorityHigh:
			row.HighPriorityCount++
		}
	}

	windowIDs := make(map[string]bool, len(complaints))
	for _, c := range complaints {
		windowIDs[c.ID] = true
	}
	for _, cl := range clusters {
		touched := make(map[string]bool)
		for _, id := range cl.MemberIDs() {
			if !windowIDs[id] {
				continue
			}
			if zone, ok := zoneOf[id]; ok {
				touched[zone] = true
			}
		}
		for zone := range touched {
			if row, ok := rows[zone]; ok {
				row.ClusterCount++
			}
		}
	}

	// Phase 2: thresholds, averages, ranking
	counts := make([]int, len(ordered))
	for i, row := range ordered {
		counts[i] = row.ComplaintCount
	}
	thresholds := models.FrequencyThresholds{
		Low:    stats.CutPoint(counts, 0.33),
		Medium: stats.CutPoint(counts, 0.66),
		High:   stats.CutPoint(counts, 1),
	}

	averages := a.historicalAverages(in.Historical)

	for _, row := range ordered {
		row.PrioritizationScore = row.ComplaintCount*ComplaintWeight +
			row.ClusterCount*ClusterWeight +
			row.UrgentCount*UrgentWeight +
			row.HighPriorityCount*HighPriorityWeight
		row.FrequencyLevel = FrequencyLevel(row.ComplaintCount, thresholds)
		row.Averages = averages[row.Barangay]
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PrioritizationScore > ordered[j].PrioritizationScore
	})

	result := make([]models.BarangayPrioritization, len(ordered))
	for i, row := range ordered {
		row.Rank = i + 1
		result[i] = *row
	}

	return &models.PrioritizationReport{
		Period:    NormalizePeriod(in.Period),
		StartDate: FormatTimestamp(in.Start),
		EndDate:   FormatTimestamp(in.End),
		Statistics: models.PrioritizationStatistics{
			AverageComplaints:   stats.Round(stats.MeanInt(counts), 2),
			FrequencyThresholds: thresholds,
		},
		Barangays: result,
	}
}

// FrequencyLevel tiers a complaint count against the cut points
func FrequencyLevel(count int, t models.FrequencyThresholds) string {
	switch {
	case count >= t.High:
		return models.FrequencyHigh
	case count >= t.Medium:
		return models.FrequencyMedium
	default:
		return models.FrequencyLow
	}
}

func (a *Aggregator) clusterWindow(complaints []models.Complaint, period string) []clustering.Cluster {
	if len(complaints) < MinComplaintsForClustering {
		return nil
	}

	clusters, err := a.clusterer.Cluster(clustering.RecordsFromComplaints(complaints), a.params)
	if err != nil {
		log.Printf("[Insights] Warning: on-demand clustering failed: %v", err)
		return nil
	}

	log.Printf("[Insights] Calculated %d clusters on-demand for period %s", len(clusters), NormalizePeriod(period))
	return clusters
}

// historicalAverages computes trailing-window complaint rates per zone
func (a *Aggregator) historicalAverages(historical []models.Complaint) map[string]models.ComplaintAverages {
	out := make(map[string]models.ComplaintAverages)
	if len(historical) == 0 {
		return out
	}

	now := a.now()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)
	yearAgo := now.Add(-365 * 24 * time.Hour)

	type bucket struct{ week, month, year int }
	buckets := make(map[string]*bucket)

	zoneOf := a.classifier.ClassifyComplaints(historical)
	for _, c := range historical {
		if c.WorkflowStatus == models.WorkflowStatusCancelled {
			continue
		}
		zone, ok := zoneOf[c.ID]
		if !ok {
			continue
		}
		b := buckets[zone]
		if b == nil {
			b = &bucket{}
			buckets[zone] = b
		}
		if !c.SubmittedAt.Before(weekAgo) {
			b.week++
		}
		if !c.SubmittedAt.Before(monthAgo) {
			b.month++
		}
		if !c.SubmittedAt.Before(yearAgo) {
			b.year++
		}
	}

	for zone, b := range buckets {
		out[zone] = models.ComplaintAverages{
			Daily:   stats.Round(float64(b.week)/7, 2),
			Weekly:  stats.Round(float64(b.month)/30*7, 2),
			Monthly: stats.Round(float64(b.year)/365*30, 2),
			Yearly:  float64(b.year),
		}
	}
	return out
}
