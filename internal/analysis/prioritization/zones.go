package prioritization

import (
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
)

// Barangays is the fixed list of zones every report covers, in report order
var Barangays = []string{
	"Aplaya",
	"Balabag",
	"Binaton",
	"Cogon",
	"Colorado",
	"Dawis",
	"Dulangan",
	"Goma",
	"Igpit",
	"Kiagot",
	"Lungag",
	"Mahayahay",
	"Matti",
	"Kapatagan (Rizal)",
	"Ruparan",
	"San Agustin",
	"San Jose (Balutakay)",
	"San Miguel (Odaca)",
	"San Roque",
	"Sinawilan",
	"Soong",
	"Tiguman",
	"Tres de Mayo",
	"Zone 1 (Pob.)",
	"Zone 2 (Pob.)",
	"Zone 3 (Pob.)",
}

var zoneAliases = map[string]string{
	"Kapatagan":  "Kapatagan (Rizal)",
	"Zone I":     "Zone 1 (Pob.)",
	"Zone II":    "Zone 2 (Pob.)",
	"Zone III":   "Zone 3 (Pob.)",
	"Zone 1":     "Zone 1 (Pob.)",
	"Zone 2":     "Zone 2 (Pob.)",
	"Zone 3":     "Zone 3 (Pob.)",
	"San Jose":   "San Jose (Balutakay)",
	"San Miguel": "San Miguel (Odaca)",
}

// NormalizeZoneName maps boundary-file spellings onto Barangays entries
func NormalizeZoneName(name string) string {
	if alias, ok := zoneAliases[name]; ok {
		return alias
	}
	return name
}

// Boundary is one named zone outline. A Polygon geometry is stored as a
// single-element MultiPolygon.
type Boundary struct {
	Name     string
	Geometry spatial.MultiPolygon
}

// ZoneClassifier assigns coordinates to zones by point-in-polygon tests
type ZoneClassifier struct {
	boundaries []Boundary
}

// NewZoneClassifier creates a classifier; boundaries are tested in order
func NewZoneClassifier(boundaries []Boundary) *ZoneClassifier {
	return &ZoneClassifier{boundaries: boundaries}
}

// Classify returns the normalized name of the first boundary containing the point
func (z *ZoneClassifier) Classify(lat, lng float64) (string, bool) {
	if !spatial.ValidCoordinates(lat, lng) {
		return "", false
	}

	point := spatial.Point{Lat: lat, Lon: lng}
	for _, b := range z.boundaries {
		if b.Name == "" {
			continue
		}
		if spatial.PointInMultiPolygon(point, b.Geometry) {
			return NormalizeZoneName(b.Name), true
		}
	}
	return "", false
}

// ClassifyComplaints maps complaint id to zone for every complaint that
// falls inside a boundary
func (z *ZoneClassifier) ClassifyComplaints(complaints []models.Complaint) map[string]string {
	out := make(map[string]string, len(complaints))
	for i := range complaints {
		lat, lng, ok := complaints[i].Coordinates()
		if !ok {
			continue
		}
		if zone, ok := z.Classify(lat, lng); ok {
			out[complaints[i].ID] = zone
		}
	}
	return out
}
