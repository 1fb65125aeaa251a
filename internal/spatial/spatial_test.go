package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, HaversineDistance(7.0, 125.5, 7.0, 125.5))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := HaversineDistance(0, 0, 1, 0)
		assert.InDelta(t, 111195, d, 5)
	})

	t.Run("km variant agrees with meters", func(t *testing.T) {
		m := HaversineDistance(7.0, 125.5, 7.001, 125.501)
		km := HaversineDistanceKm(7.0, 125.5, 7.001, 125.501)
		assert.InDelta(t, m/1000, km, 1e-9)
		assert.Less(t, m, 200.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := HaversineDistance(6.75, 125.35, 6.76, 125.36)
		b := HaversineDistance(6.76, 125.36, 6.75, 125.35)
		assert.InDelta(t, a, b, 1e-9)
	})
}

func TestDestinationPoint(t *testing.T) {
	lat, lng := DestinationPoint(6.75, 125.35, 0, 150)
	assert.InDelta(t, 150, HaversineDistance(6.75, 125.35, lat, lng), 0.01)

	lat, lng = DestinationPoint(6.75, 125.35, 90, 1000)
	assert.InDelta(t, 1000, HaversineDistance(6.75, 125.35, lat, lng), 0.01)
}

func TestAngleConversion(t *testing.T) {
	assert.InDelta(t, math.Pi, ToRadians(180), 1e-12)
	assert.InDelta(t, 90, ToDegrees(math.Pi/2), 1e-12)
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"digos", 6.75, 125.35, true},
		{"bounds inclusive", 90, -180, true},
		{"lat too large", 90.1, 0, false},
		{"lng too small", 0, -180.5, false},
		{"nan", math.NaN(), 125, false},
		{"inf", 7, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lng))
		})
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 5, Lon: 9}})
	assert.InDelta(t, 3, c.Lat, 1e-12)
	assert.InDelta(t, 5, c.Lon, 1e-12)

	assert.Equal(t, Point{}, Centroid(nil))
}

func TestMaxDistanceKm(t *testing.T) {
	center := Point{Lat: 6.75, Lon: 125.35}
	lat, lng := DestinationPoint(center.Lat, center.Lon, 45, 80)
	points := []Point{center, {Lat: lat, Lon: lng}}
	assert.InDelta(t, 0.08, MaxDistanceKm(center, points), 1e-4)
}

func square(minLng, minLat, maxLng, maxLat float64) Ring {
	return Ring{
		{minLng, minLat},
		{maxLng, minLat},
		{maxLng, maxLat},
		{minLng, maxLat},
		{minLng, minLat},
	}
}

func TestPointInPolygon(t *testing.T) {
	outer := square(125.0, 6.0, 126.0, 7.0)
	hole := square(125.4, 6.4, 125.6, 6.6)
	poly := Polygon{outer, hole}

	t.Run("inside outer ring", func(t *testing.T) {
		assert.True(t, PointInPolygon(Point{Lat: 6.2, Lon: 125.2}, poly))
	})

	t.Run("inside hole is excluded", func(t *testing.T) {
		assert.False(t, PointInPolygon(Point{Lat: 6.5, Lon: 125.5}, poly))
	})

	t.Run("outside", func(t *testing.T) {
		assert.False(t, PointInPolygon(Point{Lat: 8, Lon: 125.5}, poly))
	})

	t.Run("empty polygon", func(t *testing.T) {
		assert.False(t, PointInPolygon(Point{Lat: 6.5, Lon: 125.5}, nil))
	})
}

func TestPointInMultiPolygon(t *testing.T) {
	multi := MultiPolygon{
		{square(120, 5, 121, 6)},
		{square(125, 6, 126, 7)},
	}

	assert.True(t, PointInMultiPolygon(Point{Lat: 6.5, Lon: 125.5}, multi))
	assert.True(t, PointInMultiPolygon(Point{Lat: 5.5, Lon: 120.5}, multi))
	assert.False(t, PointInMultiPolygon(Point{Lat: 5.5, Lon: 123}, multi))
}
