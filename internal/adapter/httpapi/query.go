package httpapi

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
)

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// queryRegion parses the min_lat/max_lat/min_lon/max_lon bounding box
// parameters. All four must be present together; with none given the whole
// globe is used.
func queryRegion(params url.Values) (domain.BoundingRegion, error) {
	keys := []string{"min_lat", "max_lat", "min_lon", "max_lon"}

	present := 0
	for _, k := range keys {
		if params.Get(k) != "" {
			present++
		}
	}
	if present == 0 {
		return domain.BoundingRegion{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}, nil
	}
	if present != len(keys) {
		return domain.BoundingRegion{}, fmt.Errorf("bounding box requires all of min_lat, max_lat, min_lon, max_lon")
	}

	values := make([]float64, len(keys))
	for i, k := range keys {
		v, err := strconv.ParseFloat(params.Get(k), 64)
		if err != nil {
			return domain.BoundingRegion{}, fmt.Errorf("invalid %s: %q", k, params.Get(k))
		}
		values[i] = v
	}

	region := domain.BoundingRegion{MinLat: values[0], MaxLat: values[1], MinLon: values[2], MaxLon: values[3]}
	if region.MinLat > region.MaxLat || region.MinLon > region.MaxLon {
		return domain.BoundingRegion{}, fmt.Errorf("bounding box minimum exceeds maximum")
	}
	return region, nil
}
