package causality

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
)

// Timestamp decodes RFC3339 strings or epoch milliseconds. Values that do
// not parse decode to the zero time and are treated as missing.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return nil
	}

	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

// At wraps a time for use in a Cluster
func At(tm time.Time) *Timestamp {
	return &Timestamp{Time: tm}
}

// Coordinates is a nested center or point object. Either lat plus lng/lon
// or latitude plus longitude may be set.
type Coordinates struct {
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// LatLng builds Coordinates from a lat/lng pair
func LatLng(lat, lng float64) *Coordinates {
	return &Coordinates{Lat: &lat, Lng: &lng}
}

func (c *Coordinates) shortForm() (spatial.Point, bool) {
	if c == nil || c.Lat == nil {
		return spatial.Point{}, false
	}
	if c.Lng != nil {
		return spatial.Point{Lat: *c.Lat, Lon: *c.Lng}, true
	}
	if c.Lon != nil {
		return spatial.Point{Lat: *c.Lat, Lon: *c.Lon}, true
	}
	return spatial.Point{}, false
}

func (c *Coordinates) longForm() (spatial.Point, bool) {
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		return spatial.Point{}, false
	}
	return spatial.Point{Lat: *c.Latitude, Lon: *c.Longitude}, true
}

// Cluster is an incident cluster as accepted by the engine. Dashboards send
// clusters in several shapes, so category, time and position each have
// aliases resolved in a fixed order.
type Cluster struct {
	ID string `json:"id,omitempty"`

	Category         string `json:"category,omitempty"`
	DominantCategory string `json:"dominantCategory,omitempty"`
	Type             string `json:"type,omitempty"`
	Subcategory      string `json:"subcategory,omitempty"`

	Timestamp   *Timestamp `json:"timestamp,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	Date        *Timestamp `json:"date,omitempty"`
	ReportedAt  *Timestamp `json:"reported_at,omitempty"`
	AverageTime *Timestamp `json:"averageTime,omitempty"`
	Time        *Timestamp `json:"time,omitempty"`

	Latitude  *float64      `json:"latitude,omitempty"`
	Longitude *float64      `json:"longitude,omitempty"`
	Lat       *float64      `json:"lat,omitempty"`
	Lng       *float64      `json:"lng,omitempty"`
	Center    *Coordinates  `json:"center,omitempty"`
	Centroid  *Coordinates  `json:"centroid,omitempty"`
	Points    []Coordinates `json:"points,omitempty"`
}

// FromComplaintCluster adapts a persisted cluster
func FromComplaintCluster(c models.ComplaintCluster) Cluster {
	out := Cluster{
		ID:               c.ID,
		DominantCategory: c.DominantCategory,
		Center:           LatLng(c.CenterLat, c.CenterLng),
	}
	if !c.FirstReportedAt.IsZero() {
		out.Timestamp = At(c.FirstReportedAt)
	}
	return out
}

// ResolvedCategory returns the first non-empty category alias, or "Others"
func (c *Cluster) ResolvedCategory() string {
	if c == nil {
		return DefaultCategory
	}
	for _, v := range []string{c.Category, c.DominantCategory, c.Type, c.Subcategory} {
		if v != "" {
			return v
		}
	}
	return DefaultCategory
}

// ResolvedTimestamp returns the first usable timestamp alias
func (c *Cluster) ResolvedTimestamp() (time.Time, bool) {
	if c == nil {
		return time.Time{}, false
	}
	for _, ts := range []*Timestamp{c.Timestamp, c.CreatedAt, c.Date, c.ReportedAt, c.AverageTime, c.Time} {
		if ts != nil && !ts.IsZero() {
			return ts.Time, true
		}
	}
	return time.Time{}, false
}

// ResolvedCenter returns the cluster position: flat latitude/longitude,
// then flat lat/lng, then center, then centroid, then the mean of points.
func (c *Cluster) ResolvedCenter() (spatial.Point, bool) {
	if c == nil {
		return spatial.Point{}, false
	}

	if c.Latitude != nil && c.Longitude != nil {
		return spatial.Point{Lat: *c.Latitude, Lon: *c.Longitude}, true
	}
	if c.Lat != nil && c.Lng != nil {
		return spatial.Point{Lat: *c.Lat, Lon: *c.Lng}, true
	}
	if p, ok := c.Center.shortForm(); ok {
		return p, true
	}
	if p, ok := c.Center.longForm(); ok {
		return p, true
	}
	if p, ok := c.Centroid.shortForm(); ok {
		return p, true
	}

	var points []spatial.Point
	for i := range c.Points {
		if p, ok := c.Points[i].longForm(); ok {
			points = append(points, p)
		}
	}
	if len(points) > 0 {
		return spatial.Centroid(points), true
	}

	return spatial.Point{}, false
}
