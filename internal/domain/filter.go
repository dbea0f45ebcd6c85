package domain

// FilterHazards narrows the catalog to hazards that matter for the current
// request: severity at or above the threshold AND at least one polygon vertex
// inside the bounding region. Result order is catalog insertion order.
//
// The region test is a cheap any-vertex-inside check, not true
// polygon/rectangle intersection: a hazard that encloses the whole region
// without a vertex inside it is missed. Upgrading it would change which
// hazards are ever shown, so do not swap in PointInRing here.
func FilterHazards(catalog HazardCatalog, region BoundingRegion, threshold int) []HazardFeature {
	var out []HazardFeature
	for _, h := range catalog.Features {
		if Severity(h.NameID) < threshold {
			continue
		}
		if !anyVertexInside(h.Polygon, region) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func anyVertexInside(polygon []Coordinate, region BoundingRegion) bool {
	for _, v := range polygon {
		if region.Contains(v) {
			return true
		}
	}
	return false
}
