package domain

import "math"

// BuildExclusions converts hazard polygons into routing-engine exclusion
// rings. For each hazard:
//
//  1. rings with fewer than 3 vertices or any non-finite coordinate are
//     dropped entirely (no placeholder),
//  2. every coordinate is rounded to 6 decimal places,
//  3. the ring is closed by repeating the first vertex when needed.
//
// Output order matches input order minus the dropped rings. The routing
// engine is responsible for honoring the exclusions; the only contract here
// is well-formed, closed, numeric rings in [lon, lat] order.
func BuildExclusions(hazards []HazardFeature) []ExclusionPolygon {
	var out []ExclusionPolygon
	for _, h := range hazards {
		ring, ok := sanitizeRing(h.Polygon)
		if !ok {
			continue
		}
		out = append(out, ring)
	}
	return out
}

func sanitizeRing(polygon []Coordinate) (ExclusionPolygon, bool) {
	if len(polygon) < 3 {
		return nil, false
	}

	ring := make(ExclusionPolygon, 0, len(polygon)+1)
	for _, c := range polygon {
		if !isFinite(c.Lon) || !isFinite(c.Lat) {
			return nil, false
		}
		ring = append(ring, []float64{round6(c.Lon), round6(c.Lat)})
	}

	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		ring = append(ring, []float64{first[0], first[1]})
	}
	return ring, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
