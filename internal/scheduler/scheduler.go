package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/neko-san1432/citizenlink-insights-go/internal/metrics"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
)

// Config controls periodic clustering
type Config struct {
	Enabled                 bool
	Interval                time.Duration
	RadiusKm                float64
	MinComplaintsPerCluster int
	OnlyIfNewComplaints     bool
	StartupDelay            time.Duration
}

// DefaultConfig returns the scheduler defaults
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		Interval:                5 * time.Minute,
		RadiusKm:                0.5,
		MinComplaintsPerCluster: 3,
		OnlyIfNewComplaints:     true,
		StartupDelay:            30 * time.Second,
	}
}

// withDefaults fills non-positive numeric fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.RadiusKm <= 0 {
		c.RadiusKm = d.RadiusKm
	}
	if c.MinComplaintsPerCluster <= 0 {
		c.MinComplaintsPerCluster = d.MinComplaintsPerCluster
	}
	if c.StartupDelay < 0 {
		c.StartupDelay = d.StartupDelay
	}
	return c
}

// Request is what the scheduler asks the detector to run
type Request struct {
	RadiusKm  float64
	MinPoints int
	Trigger   string
}

// Detector runs one clustering pass and persists it
type Detector interface {
	RunClustering(ctx context.Context, req Request) (int, error)
}

// ClusterStore reports when the active generation was written
type ClusterStore interface {
	MostRecentActiveCreatedAt(ctx context.Context) (*time.Time, error)
}

// ComplaintCounter counts geolocated complaints submitted after since, or all when since is nil
type ComplaintCounter interface {
	CountGeolocatedSince(ctx context.Context, since *time.Time) (int, error)
}

// RunResult is the outcome of one trigger
type RunResult struct {
	Success       bool      `json:"success"`
	Skipped       bool      `json:"skipped,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	ClustersFound int       `json:"clustersFound"`
	DurationMs    int64     `json:"durationMs"`
	Timestamp     time.Time `json:"timestamp"`
	Error         string    `json:"error,omitempty"`
}

// Status is the scheduler state exposed to operators
type Status struct {
	Enabled       bool       `json:"enabled"`
	IntervalHours float64    `json:"intervalHours"`
	IsRunning     bool       `json:"isRunning"`
	LastRunTime   *time.Time `json:"lastRunTime"`
	NextRunTime   *time.Time `json:"nextRunTime"`
}

// Skip reasons
const (
	SkipBusy            = "busy"
	SkipNoNewComplaints = "no_new_complaints"
)

// ClusteringScheduler reclusters complaints periodically. At most one run is
// in flight; triggers that arrive during a run are dropped.
type ClusteringScheduler struct {
	detector   Detector
	clusters   ClusterStore
	complaints ComplaintCounter
	now        func() time.Time

	running atomic.Bool

	mu      sync.Mutex
	cfg     Config
	cron    *cron.Cron
	entryID cron.EntryID
	grace   *time.Timer
	lastRun *time.Time
}

// NewClusteringScheduler creates a stopped scheduler
func NewClusteringScheduler(cfg Config, detector Detector, clusters ClusterStore, complaints ComplaintCounter) *ClusteringScheduler {
	return &ClusteringScheduler{
		detector:   detector,
		clusters:   clusters,
		complaints: complaints,
		now:        time.Now,
		cfg:        cfg.withDefaults(),
	}
}

// Start schedules a run after the startup delay and then one every interval.
// It does nothing when the scheduler is disabled or already started.
func (s *ClusteringScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		log.Println("[Scheduler] Automatic clustering is disabled")
		return
	}
	if s.cron != nil {
		return
	}

	s.cron = cron.New()
	s.entryID = s.cron.Schedule(cron.Every(s.cfg.Interval), cron.FuncJob(func() {
		s.run(context.Background(), models.RunTriggerScheduled)
	}))
	s.cron.Start()

	s.grace = time.AfterFunc(s.cfg.StartupDelay, func() {
		s.run(context.Background(), models.RunTriggerScheduled)
	})

	log.Printf("[Scheduler] Started: every %s, radius %.2fkm, min %d complaints, first run in %s",
		s.cfg.Interval, s.cfg.RadiusKm, s.cfg.MinComplaintsPerCluster, s.cfg.StartupDelay)
}

// Stop cancels the recurring job and a pending startup run. A run already in
// progress completes.
func (s *ClusteringScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
		log.Println("[Scheduler] Stopped")
	}
}

// TriggerManual runs clustering now, subject to the same guard and new-data check
func (s *ClusteringScheduler) TriggerManual(ctx context.Context) RunResult {
	log.Println("[Scheduler] Manual trigger requested")
	return s.run(ctx, models.RunTriggerManual)
}

// Status returns the current scheduler state
func (s *ClusteringScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Enabled:       s.cfg.Enabled,
		IntervalHours: s.cfg.Interval.Hours(),
		IsRunning:     s.running.Load(),
	}
	if s.lastRun != nil {
		last := *s.lastRun
		st.LastRunTime = &last
	}

	if s.cron != nil {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			st.NextRunTime = &next
		}
	}
	if st.NextRunTime == nil && s.cfg.Enabled && st.LastRunTime != nil {
		next := st.LastRunTime.Add(s.cfg.Interval)
		st.NextRunTime = &next
	}
	return st
}

// HasNewComplaints reports whether any geolocated complaint arrived after the
// active generation was written, or after the last run when nothing is
// persisted. Errors count as new data.
func (s *ClusteringScheduler) HasNewComplaints(ctx context.Context) bool {
	since, err := s.clusters.MostRecentActiveCreatedAt(ctx)
	if err != nil {
		log.Printf("[Scheduler] Warning: failed to read latest cluster time, assuming new complaints: %v", err)
		return true
	}

	if since == nil {
		s.mu.Lock()
		if s.lastRun != nil {
			last := *s.lastRun
			since = &last
		}
		s.mu.Unlock()
	}

	count, err := s.complaints.CountGeolocatedSince(ctx, since)
	if err != nil {
		log.Printf("[Scheduler] Warning: failed to count new complaints, assuming new complaints: %v", err)
		return true
	}
	return count > 0
}

func (s *ClusteringScheduler) run(ctx context.Context, trigger string) RunResult {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("[Scheduler] Clustering already running, skipping %s trigger", trigger)
		metrics.SchedulerSkips.WithLabelValues(SkipBusy).Inc()
		return RunResult{Skipped: true, Reason: "clustering already running", Timestamp: s.now()}
	}
	defer s.running.Store(false)

	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	if cfg.OnlyIfNewComplaints && !s.HasNewComplaints(ctx) {
		log.Println("[Scheduler] No new complaints since last run, skipping")
		metrics.SchedulerSkips.WithLabelValues(SkipNoNewComplaints).Inc()
		return RunResult{Success: true, Skipped: true, Reason: "no new complaints", Timestamp: s.now()}
	}

	start := s.now()
	found, err := s.detector.RunClustering(ctx, Request{
		RadiusKm:  cfg.RadiusKm,
		MinPoints: cfg.MinComplaintsPerCluster,
		Trigger:   trigger,
	})
	finished := s.now()
	duration := finished.Sub(start)

	s.mu.Lock()
	s.lastRun = &finished
	s.mu.Unlock()

	if err != nil {
		log.Printf("[Scheduler] Clustering run failed after %s: %v", duration, err)
		return RunResult{Error: err.Error(), DurationMs: duration.Milliseconds(), Timestamp: finished}
	}

	log.Printf("[Scheduler] Clustering run completed: %d clusters in %s", found, duration)
	return RunResult{
		Success:       true,
		ClustersFound: found,
		DurationMs:    duration.Milliseconds(),
		Timestamp:     finished,
	}
}
