package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// squareRing is a closed 10x10 ring around the origin, lat=y lon=x.
func squareRing() []Coordinate {
	return []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 10},
		{Lat: 10, Lon: 10},
		{Lat: 10, Lon: 0},
		{Lat: 0, Lon: 0},
	}
}

func TestPointInRing(t *testing.T) {
	t.Run("inside square", func(t *testing.T) {
		assert.True(t, PointInRing(squareRing(), Coordinate{Lat: 5, Lon: 5}))
	})

	t.Run("outside square", func(t *testing.T) {
		assert.False(t, PointInRing(squareRing(), Coordinate{Lat: 15, Lon: 15}))
	})

	t.Run("open ring behaves like closed", func(t *testing.T) {
		open := squareRing()[:4]
		assert.True(t, PointInRing(open, Coordinate{Lat: 5, Lon: 5}))
		assert.False(t, PointInRing(open, Coordinate{Lat: 15, Lon: 15}))
	})

	t.Run("degenerate rings contain nothing", func(t *testing.T) {
		assert.False(t, PointInRing(nil, Coordinate{Lat: 5, Lon: 5}))
		assert.False(t, PointInRing([]Coordinate{{Lat: 1, Lon: 1}}, Coordinate{Lat: 1, Lon: 1}))
		assert.False(t, PointInRing([]Coordinate{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 10}}, Coordinate{Lat: 5, Lon: 5}))
	})

	t.Run("point on vertex does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			PointInRing(squareRing(), Coordinate{Lat: 0, Lon: 0})
			PointInRing(squareRing(), Coordinate{Lat: 10, Lon: 10})
		})
	})

	t.Run("concave polygon notch", func(t *testing.T) {
		// U shape: the notch between the arms is outside.
		ring := []Coordinate{
			{Lat: 0, Lon: 0}, {Lat: 0, Lon: 10}, {Lat: 10, Lon: 10},
			{Lat: 10, Lon: 6}, {Lat: 2, Lon: 6}, {Lat: 2, Lon: 4},
			{Lat: 10, Lon: 4}, {Lat: 10, Lon: 0},
		}
		assert.True(t, PointInRing(ring, Coordinate{Lat: 1, Lon: 5}))
		assert.False(t, PointInRing(ring, Coordinate{Lat: 5, Lon: 5}))
	})
}

func TestHaversine(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		p := Coordinate{Lat: 50.054, Lon: 19.9445}
		assert.Equal(t, 0.0, Haversine(p, p))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := Haversine(Coordinate{Lat: 50, Lon: 20}, Coordinate{Lat: 51, Lon: 20})
		assert.InDelta(t, 111195, d, 200)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Coordinate{Lat: 50.06, Lon: 19.94}
		b := Coordinate{Lat: 52.23, Lon: 21.01}
		assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
	})
}

func TestRouteLengthMeters(t *testing.T) {
	assert.Equal(t, 0.0, RouteLengthMeters(nil))
	assert.Equal(t, 0.0, RouteLengthMeters([]Coordinate{{Lat: 50, Lon: 20}}))

	route := []Coordinate{
		{Lat: 50, Lon: 20},
		{Lat: 50.5, Lon: 20},
		{Lat: 51, Lon: 20},
	}
	whole := Haversine(route[0], route[2])
	assert.InDelta(t, whole, RouteLengthMeters(route), 1)
}

func TestComputeBoundingRegion(t *testing.T) {
	start := Coordinate{Lat: 50.054, Lon: 19.9445}
	end := Coordinate{Lat: 50.3, Lon: 20.2}

	region := ComputeBoundingRegion(start, end, 50000)

	t.Run("contains both endpoints", func(t *testing.T) {
		assert.True(t, region.Contains(start))
		assert.True(t, region.Contains(end))
	})

	t.Run("latitude buffer is 50km in degrees", func(t *testing.T) {
		latBuffer := 50000.0 / 111320
		assert.InDelta(t, 50.054-latBuffer, region.MinLat, 1e-9)
		assert.InDelta(t, 50.3+latBuffer, region.MaxLat, 1e-9)
	})

	t.Run("longitude buffer widened by cos(avgLat)", func(t *testing.T) {
		lonSpan := region.MaxLon - 20.2
		latSpan := region.MaxLat - 50.3
		// At ~50°N a longitude degree is ~0.64 of a latitude degree,
		// so the buffer in degrees must be wider.
		assert.Greater(t, lonSpan, latSpan)
		assert.Less(t, lonSpan, latSpan*2)
	})

	t.Run("order of endpoints does not matter", func(t *testing.T) {
		assert.Equal(t, region, ComputeBoundingRegion(end, start, 50000))
	})
}
