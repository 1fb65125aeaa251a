package spatial

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Ring is a closed GeoJSON linear ring. Each position is [lng, lat].
type Ring [][2]float64

// Polygon is a GeoJSON polygon: the first ring is the outer boundary,
// the remaining rings are holes.
type Polygon []Ring

// MultiPolygon is a set of polygons
type MultiPolygon []Polygon

// Centroid calculates the arithmetic mean of a set of points
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// MaxDistanceKm returns the largest distance from center to any point in km
func MaxDistanceKm(center Point, points []Point) float64 {
	maxDist := 0.0
	for _, p := range points {
		d := HaversineDistanceKm(center.Lat, center.Lon, p.Lat, p.Lon)
		if d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

// PointInRing checks if a point is inside a ring using ray casting
func PointInRing(point Point, ring Ring) bool {
	x, y := point.Lon, point.Lat
	inside := false

	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PointInPolygon checks if a point is inside the outer ring and outside every hole
func PointInPolygon(point Point, polygon Polygon) bool {
	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return false
	}

	if !PointInRing(point, polygon[0]) {
		return false
	}

	for _, hole := range polygon[1:] {
		if PointInRing(point, hole) {
			return false
		}
	}

	return true
}

// PointInMultiPolygon checks each member polygon in turn
func PointInMultiPolygon(point Point, multi MultiPolygon) bool {
	for _, polygon := range multi {
		if PointInPolygon(point, polygon) {
			return true
		}
	}
	return false
}
