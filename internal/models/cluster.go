package models

import "time"

// ComplaintCluster is one persisted DBSCAN cluster. A clustering run writes a
// whole generation at once and marks the previous generation inactive.
type ComplaintCluster struct {
	ID               string    `json:"id" db:"id"`
	GenerationID     string    `json:"generation_id" db:"generation_id"`
	ClusterName      string    `json:"cluster_name" db:"cluster_name"`
	CenterLat        float64   `json:"center_lat" db:"center_lat"`
	CenterLng        float64   `json:"center_lng" db:"center_lng"`
	RadiusMeters     float64   `json:"radius_meters" db:"radius_meters"`
	ComplaintIDs     []string  `json:"complaint_ids" db:"complaint_ids"` // JSON array
	PatternType      string    `json:"pattern_type" db:"pattern_type"`
	DominantCategory string    `json:"dominant_category" db:"dominant_category"`
	FirstReportedAt  time.Time `json:"first_reported_at" db:"first_reported_at"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Cluster status constants
const (
	ClusterStatusActive   = "active"
	ClusterStatusInactive = "inactive"
)

// Pattern type constants
const (
	PatternNormal    = "normal"
	PatternOutbreak  = "outbreak"
	PatternRecurring = "recurring"
)
