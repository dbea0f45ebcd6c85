package domain

import "math"

const (
	// earthRadiusMeters is the mean Earth radius used for Haversine distances.
	earthRadiusMeters = 6371000

	// metersPerDegreeLat approximates one degree of latitude. Longitude
	// degrees shrink with cos(lat) and are scaled accordingly.
	metersPerDegreeLat = 111320
)

// PointInRing reports whether pt lies inside the polygon ring using the
// even-odd ray-casting rule over flat-plane lon/lat. Rings with fewer than 3
// vertices contain nothing. Points exactly on a vertex or edge get a
// deterministic but unspecified answer.
//
// This is the single containment primitive: both the exclusion round-trip
// checks and route danger classification go through it. The bounding-region
// prefilter deliberately does not (see FilterHazards).
func PointInRing(ring []Coordinate, pt Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(p1, p2 Coordinate) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	dlat := (p2.Lat - p1.Lat) * math.Pi / 180
	dlon := (p2.Lon - p1.Lon) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// RouteLengthMeters sums the Haversine length of consecutive route segments.
func RouteLengthMeters(route []Coordinate) float64 {
	total := 0.0
	for i := 0; i+1 < len(route); i++ {
		total += Haversine(route[i], route[i+1])
	}
	return total
}

// ComputeBoundingRegion returns the rectangle around start and end expanded
// by bufferMeters on every side. The longitude buffer is widened by
// 1/cos(avgLat) so the buffer stays roughly metric away from the equator.
func ComputeBoundingRegion(start, end Coordinate, bufferMeters float64) BoundingRegion {
	minLat := math.Min(start.Lat, end.Lat)
	maxLat := math.Max(start.Lat, end.Lat)
	minLon := math.Min(start.Lon, end.Lon)
	maxLon := math.Max(start.Lon, end.Lon)

	latBuffer := bufferMeters / metersPerDegreeLat

	avgLat := (minLat + maxLat) / 2 * math.Pi / 180
	scale := math.Cos(avgLat)
	if scale < 0.01 {
		// Near the poles cos(lat) collapses; cap the widening factor.
		scale = 0.01
	}
	lonBuffer := latBuffer / scale

	return BoundingRegion{
		MinLat: minLat - latBuffer,
		MaxLat: maxLat + latBuffer,
		MinLon: minLon - lonBuffer,
		MaxLon: maxLon + lonBuffer,
	}
}
