// Package osrm is the client for the OSRM routing engine, used for the
// unrestricted "optimal" route. OSRM has no exclusion support; safety-aware
// routing goes through the valhalla package instead.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
)

// Client implements domain.Router against an OSRM route endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OSRM routing client. baseURL includes the profile,
// e.g. https://router.project-osrm.org/route/v1/driving.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

type routeResponse struct {
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// PlanRoute requests the fastest route through q.Locations. Exclusion
// polygons are rejected: callers wanting avoidance must use Valhalla. An
// empty routes array yields (nil, nil).
func (c *Client) PlanRoute(ctx context.Context, q domain.RouteQuery) ([]domain.Coordinate, error) {
	if len(q.ExcludePolygons) > 0 {
		return nil, fmt.Errorf("osrm does not support exclusion polygons")
	}
	if len(q.Locations) < 2 {
		return nil, fmt.Errorf("osrm route needs at least 2 locations, got %d", len(q.Locations))
	}

	parts := make([]string, len(q.Locations))
	for i, l := range q.Locations {
		parts[i] = fmt.Sprintf("%f,%f", l.Lon, l.Lat)
	}

	params := url.Values{
		"overview":   {"full"},
		"geometries": {"polyline"},
	}
	fullURL := c.baseURL + "/" + strings.Join(parts, ";") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RoutingDuration.WithLabelValues("osrm").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RoutesPlanned.WithLabelValues("osrm", "error").Inc()
		return nil, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.RoutesPlanned.WithLabelValues("osrm", "error").Inc()
		return nil, fmt.Errorf("osrm: status %d: %s", resp.StatusCode, body)
	}

	var osrmResp routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		c.metrics.RoutesPlanned.WithLabelValues("osrm", "error").Inc()
		return nil, fmt.Errorf("decode route response: %w", err)
	}

	if len(osrmResp.Routes) == 0 {
		c.metrics.RoutesPlanned.WithLabelValues("osrm", "no_route").Inc()
		c.logger.Warn("no route found", "locations", len(q.Locations))
		return nil, nil
	}

	// OSRM geometry is a default precision-5 polyline of (lat, lon) pairs.
	coords, _, err := polyline.DecodeCoords([]byte(osrmResp.Routes[0].Geometry))
	if err != nil {
		c.metrics.RoutesPlanned.WithLabelValues("osrm", "error").Inc()
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	route := make([]domain.Coordinate, len(coords))
	for i, p := range coords {
		route[i] = domain.Coordinate{Lat: p[0], Lon: p[1]}
	}

	c.metrics.RoutesPlanned.WithLabelValues("osrm", "success").Inc()
	c.metrics.RoutePoints.Observe(float64(len(route)))
	return route, nil
}
