package clustering

import "time"

// Defaults used when a caller does not supply radius or minimum points
const (
	DefaultRadiusKm  = 0.1
	DefaultMinPoints = 5
)

// Params holds DBSCAN parameters. RadiusKm is the neighbourhood radius in
// kilometres, MinPoints the neighbour count a record needs to seed a cluster.
type Params struct {
	RadiusKm  float64
	MinPoints int
	DateFrom  *time.Time
	DateTo    *time.Time
}

// DefaultParams returns the on-demand clustering parameters
func DefaultParams() Params {
	return Params{
		RadiusKm:  DefaultRadiusKm,
		MinPoints: DefaultMinPoints,
	}
}

// ValidationError is returned for parameters rejected before any data access
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks radius, minimum points and date range
func (p Params) Validate() error {
	if p.RadiusKm <= 0 {
		return &ValidationError{Field: "radius_km", Message: "Radius must be greater than 0"}
	}
	if p.MinPoints < 2 {
		return &ValidationError{Field: "min_complaints", Message: "Minimum complaints per cluster must be at least 2"}
	}
	if p.DateFrom != nil && p.DateTo != nil && p.DateFrom.After(*p.DateTo) {
		return &ValidationError{Field: "date_from", Message: "Start date cannot be after end date"}
	}
	return nil
}
