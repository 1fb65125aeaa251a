package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClusteringRuns counts clustering runs by trigger and outcome (completed, failed)
	ClusteringRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citizenlink_clustering_runs_total",
		Help: "Number of clustering runs by trigger and outcome",
	}, []string{"trigger", "outcome"})

	ClusteringRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "citizenlink_clustering_run_duration_seconds",
		Help:    "Duration of clustering runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})

	// ActiveClusters is the size of the current active generation
	ActiveClusters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citizenlink_active_clusters",
		Help: "Number of clusters in the active generation",
	})
)

var (
	// SchedulerSkips counts scheduler triggers that did not run (busy, no_new_complaints)
	SchedulerSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citizenlink_scheduler_skipped_runs_total",
		Help: "Number of scheduler triggers that were skipped",
	}, []string{"reason"})
)

var (
	CausalLinksFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citizenlink_causal_links_found_total",
		Help: "Number of verified causal links found while building graphs",
	})

	PrioritizationReports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citizenlink_prioritization_reports_total",
		Help: "Number of barangay prioritization reports built, by period",
	}, []string{"period"})
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citizenlink_http_requests_total",
		Help: "Number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
)
