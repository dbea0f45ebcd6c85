// Package domain models the route-safety pipeline of the trip planner:
// hazard polygons, risk thresholds, exclusion geometry, and per-point
// danger classification of a computed route.
//
// # Hazard Dataset
//
// Hazards arrive as a static GeoJSON FeatureCollection. Each feature is a
// polygon (or multi-polygon, from which only the exterior ring of the first
// polygon is used) tagged with an integer "name_id" property. The dataset is
// produced offline by merging geotagged incident reports into per-category
// polygons; it is loaded once per process and never mutated.
//
// # Severity Table
//
// name_id values key into a hand-authored severity table (1–10). The ids are
// an external contract with the dataset build: renumbering one side without
// the other silently misclassifies every hazard, so the table is versioned
// alongside the dataset it annotates. Ids absent from the table are treated
// as severity 0 and never survive filtering.
//
// # Risk Dial
//
// The user-facing risk dial is a 0–100 slider where 0 is most cautious and
// 100 is least cautious. It maps to a severity cutoff via
//
//	threshold = (100 - dial)/10 + 1, clamped to [1, 10]
//
// The mapping is deliberately inverted: a higher tolerance yields a lower
// cutoff, so more hazards are considered acceptable to ignore. Sidebar copy
// and the visual band boundaries depend on this exact arithmetic; do not
// "fix" it.
//
// # Geometry Conventions
//
// All geometry is flat-plane over WGS-84 degrees. Point-in-polygon uses
// ray casting (even-odd rule) and is shared by every caller that needs true
// containment. The bounding-region prefilter intentionally uses a cheaper
// any-vertex-inside test instead: a hazard that surrounds the region without
// placing a vertex inside it is a known false negative, accepted for speed.
// Distances along a route use the Haversine great-circle formula.
package domain
