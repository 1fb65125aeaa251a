package models

import "time"

// ComplaintFilter represents filter parameters for querying geolocated complaints
type ComplaintFilter struct {
	Type           string
	Status         string
	ExcludeStatus  string
	SubmittedFrom  *time.Time
	SubmittedTo    *time.Time
	SubmittedAfter *time.Time // strict
	NewestFirst    bool
	Limit          int
}

// DetectClustersRequest is the body of POST /clusters/detect
type DetectClustersRequest struct {
	RadiusKm      *float64 `json:"radius_km"`
	MinComplaints *int     `json:"min_complaints"`
	Type          string   `json:"type"`
	DateFrom      string   `json:"date_from"`
	DateTo        string   `json:"date_to"`
}

// SimilarQuery represents query parameters for GET /complaints/similar
type SimilarQuery struct {
	Lat      *float64 `form:"lat"`
	Lng      *float64 `form:"lng"`
	RadiusKm float64  `form:"radius_km"`
	Type     string   `form:"type"`
	Status   string   `form:"status"`
	DateFrom string   `form:"date_from"`
	DateTo   string   `form:"date_to"`
}
