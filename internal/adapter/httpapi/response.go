package httpapi

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
)

// routeResponse is a plan result plus the route as a GeoJSON LineString,
// ready to hand to the map layer without client-side conversion.
type routeResponse struct {
	domain.PlanResult
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

func newRouteResponse(result domain.PlanResult) routeResponse {
	resp := routeResponse{PlanResult: result}
	if geometry, err := routeGeometry(result.Route); err == nil {
		resp.Geometry = geometry
	}
	return resp
}

// routeGeometry encodes the route as a GeoJSON LineString in [lon, lat]
// order. Routes shorter than two points have no geometry.
func routeGeometry(route []domain.Coordinate) (json.RawMessage, error) {
	if len(route) < 2 {
		return nil, nil
	}

	coords := make([]geom.Coord, len(route))
	for i, c := range route {
		coords[i] = geom.Coord{c.Lon, c.Lat}
	}

	ls, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, err
	}
	return geojson.Marshal(ls)
}
