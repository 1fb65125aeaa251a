package repository

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/prioritization"
	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
)

// BoundaryRepository loads zone boundaries from a JSON file of the form
// [{"name": "...", "geojson": {"type": "Polygon"|"MultiPolygon", "coordinates": [...]}}].
// The file is read once and cached.
type BoundaryRepository struct {
	path string

	once       sync.Once
	boundaries []prioritization.Boundary
	err        error
}

// NewBoundaryRepository creates a repository over the boundary file at path
func NewBoundaryRepository(path string) *BoundaryRepository {
	return &BoundaryRepository{path: path}
}

// Load returns the cached boundaries, reading the file on first use
func (r *BoundaryRepository) Load() ([]prioritization.Boundary, error) {
	r.once.Do(func() {
		data, err := os.ReadFile(r.path)
		if err != nil {
			r.err = fmt.Errorf("failed to read boundaries: %w", err)
			return
		}
		r.boundaries, r.err = ParseBoundaries(data)
		if r.err == nil {
			log.Printf("[Boundaries] Loaded %d zone boundaries from %s", len(r.boundaries), r.path)
		}
	})
	return r.boundaries, r.err
}

// ParseBoundaries decodes a boundary document. Entries without a name or
// with an unsupported geometry type are skipped.
func ParseBoundaries(data []byte) ([]prioritization.Boundary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse boundaries: invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("failed to parse boundaries: expected an array")
	}

	var boundaries []prioritization.Boundary
	doc.ForEach(func(_, entry gjson.Result) bool {
		name := entry.Get("name").String()
		coords := entry.Get("geojson.coordinates")
		if name == "" || !coords.Exists() {
			return true
		}

		var geometry spatial.MultiPolygon
		switch entry.Get("geojson.type").String() {
		case "Polygon":
			geometry = spatial.MultiPolygon{parsePolygon(coords)}
		case "MultiPolygon":
			for _, p := range coords.Array() {
				geometry = append(geometry, parsePolygon(p))
			}
		default:
			log.Printf("[Boundaries] Warning: skipping %s with unsupported geometry %q", name, entry.Get("geojson.type").String())
			return true
		}

		boundaries = append(boundaries, prioritization.Boundary{Name: name, Geometry: geometry})
		return true
	})

	return boundaries, nil
}

func parsePolygon(v gjson.Result) spatial.Polygon {
	var polygon spatial.Polygon
	for _, r := range v.Array() {
		var ring spatial.Ring
		for _, pos := range r.Array() {
			xy := pos.Array()
			if len(xy) < 2 {
				continue
			}
			ring = append(ring, [2]float64{xy[0].Float(), xy[1].Float()})
		}
		polygon = append(polygon, ring)
	}
	return polygon
}
