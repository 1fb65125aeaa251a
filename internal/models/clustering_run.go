package models

import "time"

// ClusteringRun records one execution of the clusterer
type ClusteringRun struct {
	ID int64 `json:"id" db:"id"`

	GenerationID string `json:"generation_id,omitempty" db:"generation_id"`
	Trigger      string `json:"trigger" db:"run_trigger"` // scheduled, manual, api
	Status       string `json:"status" db:"status"`      // running, completed, failed

	// Input parameters
	RadiusKm  float64 `json:"radius_km" db:"radius_km"`
	MinPoints int     `json:"min_points" db:"min_points"`

	// Results
	ComplaintsScanned int    `json:"complaints_scanned" db:"complaints_scanned"`
	ClustersFound     int    `json:"clusters_found" db:"clusters_found"`
	DurationMs        int64  `json:"duration_ms" db:"duration_ms"`
	ErrorMessage      string `json:"error_message,omitempty" db:"error_message"`

	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RunTrigger constants
const (
	RunTriggerScheduled = "scheduled"
	RunTriggerManual    = "manual"
	RunTriggerAPI       = "api"
)

// RunStatus constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
