package models

import "time"

// Complaint is a citizen complaint as seen by the clustering and insights code
type Complaint struct {
	ID             string    `json:"id" db:"id"`
	Title          string    `json:"title,omitempty" db:"title"`
	Type           string    `json:"type" db:"type"`
	Category       string    `json:"category,omitempty" db:"category"`
	Subcategory    string    `json:"subcategory,omitempty" db:"subcategory"`
	Priority       string    `json:"priority" db:"priority"`               // low, medium, high, urgent
	WorkflowStatus string    `json:"workflow_status" db:"workflow_status"` // new, assigned, in_progress, resolved, cancelled
	Latitude       *float64  `json:"latitude" db:"latitude"`
	Longitude      *float64  `json:"longitude" db:"longitude"`
	SubmittedAt    time.Time `json:"submitted_at" db:"submitted_at"`
}

// Coordinates returns lat/lng and whether both are present
func (c *Complaint) Coordinates() (float64, float64, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return 0, 0, false
	}
	return *c.Latitude, *c.Longitude, true
}

// NearbyComplaint is a complaint annotated with its distance from a query point
type NearbyComplaint struct {
	Complaint
	DistanceKm float64 `json:"distance_km"`
}

// Priority constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// WorkflowStatusCancelled is excluded from prioritization
const WorkflowStatusCancelled = "cancelled"
