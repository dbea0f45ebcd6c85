package domain

import (
	"context"
	"time"
)

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HazardFeature is one named hazard region from the dataset. The polygon is
// an ordered ring of vertices; it may or may not be explicitly closed, the
// exclusion sanitizer closes it when needed.
type HazardFeature struct {
	NameID  int          `json:"name_id"`
	Polygon []Coordinate `json:"polygon"`
}

// HazardCatalog is the immutable set of hazard features loaded once per
// process. A zero-value catalog (no features) is valid and means "no hazards
// known", the fail-open state after a load failure.
type HazardCatalog struct {
	Features []HazardFeature
}

// BoundingRegion is the rectangle of interest around a start/end pair,
// expanded by a fixed buffer.
type BoundingRegion struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate lies within the region, borders
// included.
func (r BoundingRegion) Contains(c Coordinate) bool {
	return c.Lat >= r.MinLat && c.Lat <= r.MaxLat &&
		c.Lon >= r.MinLon && c.Lon <= r.MaxLon
}

// ExclusionPolygon is routing-engine-facing geometry: a closed ring of
// [lon, lat] pairs rounded to 6 decimal places. The inner slices always have
// length 2; the layout matches Valhalla's exclude_polygons wire format so the
// ring marshals directly.
type ExclusionPolygon [][]float64

// DangerProfile holds one normalized severity value (0.0–1.0) per route
// point, 0 where the point falls inside no hazard. Used only for rendering.
type DangerProfile []float64

// RouteQuery describes a routing-engine request.
type RouteQuery struct {
	Locations       []Coordinate
	Costing         string
	ExcludePolygons []ExclusionPolygon
}

// Router computes a route through the given locations. A nil path with a nil
// error means the engine found no route, which is a normal negative result.
type Router interface {
	PlanRoute(ctx context.Context, q RouteQuery) ([]Coordinate, error)
}

// GeocodeResult is one candidate match for a free-text location query.
type GeocodeResult struct {
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address,omitempty"`
}

// Geocoder resolves free-text queries to coordinate candidates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]GeocodeResult, error)
}

// HazardSource supplies the hazard catalog snapshot.
type HazardSource interface {
	Catalog(ctx context.Context) (HazardCatalog, error)
}

// PlanRequest carries everything the planner needs for one route.
type PlanRequest struct {
	Start       Coordinate `json:"start"`
	End         Coordinate `json:"end"`
	DangerLevel int        `json:"danger_level"` // risk dial, 0–100
	Mode        TravelMode `json:"mode"`
}

// PlanResult is the outcome of a single plan invocation. Seq orders results
// so that a stale in-flight response never overwrites a newer one.
type PlanResult struct {
	Seq       uint64          `json:"seq"`
	NoRoute   bool            `json:"no_route"`
	Route     []Coordinate    `json:"route,omitempty"`
	Profile   DangerProfile   `json:"danger_profile,omitempty"`
	Hazards   []HazardFeature `json:"hazards,omitempty"`
	Threshold int             `json:"threshold"`
	Band      DangerBand      `json:"band"`
	Carbon    CarbonSummary   `json:"carbon"`
	PlannedAt time.Time       `json:"planned_at"`
}
