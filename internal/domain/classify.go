package domain

// ClassifyRoute produces one danger value per route point: the severity of
// the first hazard (in iteration order) whose polygon contains the point,
// normalized to 0.0–1.0, or 0 when no hazard contains it. The profile length
// always equals the route length; an empty route yields an empty profile.
//
// When hazards overlap, the earlier hazard wins even if a later one is more
// severe. Changing this to most-severe-wins would alter rendered colors.
func ClassifyRoute(route []Coordinate, hazards []HazardFeature) DangerProfile {
	profile := make(DangerProfile, len(route))
	for i, pt := range route {
		for _, h := range hazards {
			if PointInRing(h.Polygon, pt) {
				profile[i] = float64(Severity(h.NameID)) / 10
				break
			}
		}
	}
	return profile
}
