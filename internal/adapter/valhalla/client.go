// Package valhalla is the client for the Valhalla routing engine. It builds
// turn-by-turn route requests with optional exclusion polygons and decodes
// the precision-6 polyline shape of the returned trip.
package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
)

// shapeCodec decodes Valhalla's precision-6 polyline shape strings.
var shapeCodec = polyline.Codec{Dim: 2, Scale: 1e6}

// UpstreamError is a non-success response from the routing engine. Status
// and body are preserved so the proxy layer can relay them unchanged.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("valhalla: status %d: %s", e.Status, e.Body)
}

// Client implements domain.Router against a Valhalla /route endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Valhalla routing client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Request/response wire types.

type location struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type routeRequest struct {
	Locations       []location                `json:"locations"`
	Costing         string                    `json:"costing"`
	Alternates      int                       `json:"alternates"`
	CostingOptions  map[string]map[string]any `json:"costing_options"`
	ExcludePolygons []domain.ExclusionPolygon `json:"exclude_polygons,omitempty"`
}

type routeResponse struct {
	Trip struct {
		Legs []struct {
			Shape string `json:"shape"`
		} `json:"legs"`
	} `json:"trip"`
}

// PlanRoute requests a route through q.Locations. Exclusion polygons are
// attached only when present. A response without trip legs means the engine
// found no route and yields (nil, nil).
func (c *Client) PlanRoute(ctx context.Context, q domain.RouteQuery) ([]domain.Coordinate, error) {
	costing := q.Costing
	if costing == "" {
		costing = "auto"
	}

	reqBody := routeRequest{
		Locations:      make([]location, len(q.Locations)),
		Costing:        costing,
		Alternates:     1,
		CostingOptions: map[string]map[string]any{costing: {}},
	}
	for i, l := range q.Locations {
		reqBody.Locations[i] = location{Lon: l.Lon, Lat: l.Lat}
	}
	if len(q.ExcludePolygons) > 0 {
		reqBody.ExcludePolygons = q.ExcludePolygons
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal route request: %w", err)
	}

	start := time.Now()
	body, err := c.post(ctx, payload)
	c.metrics.RoutingDuration.WithLabelValues("valhalla").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RoutesPlanned.WithLabelValues("valhalla", "error").Inc()
		return nil, err
	}

	var resp routeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.RoutesPlanned.WithLabelValues("valhalla", "error").Inc()
		return nil, fmt.Errorf("decode route response: %w", err)
	}

	if len(resp.Trip.Legs) == 0 {
		c.metrics.RoutesPlanned.WithLabelValues("valhalla", "no_route").Inc()
		c.logger.Warn("no route found", "locations", len(q.Locations), "costing", costing)
		return nil, nil
	}

	route, err := decodeShape(resp.Trip.Legs[0].Shape)
	if err != nil {
		c.metrics.RoutesPlanned.WithLabelValues("valhalla", "error").Inc()
		return nil, err
	}

	c.metrics.RoutesPlanned.WithLabelValues("valhalla", "success").Inc()
	c.metrics.RoutePoints.Observe(float64(len(route)))
	return route, nil
}

// Forward relays a raw request body to the routing engine verbatim and
// returns the upstream status and body unchanged. Used by the routing proxy
// endpoint; the body is intentionally not validated or rewritten.
func (c *Client) Forward(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// decodeShape decodes a precision-6 polyline into (lat, lon) coordinates.
func decodeShape(shape string) ([]domain.Coordinate, error) {
	coords, _, err := shapeCodec.DecodeCoords([]byte(shape))
	if err != nil {
		return nil, fmt.Errorf("decode shape: %w", err)
	}

	route := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		route[i] = domain.Coordinate{Lat: c[0], Lon: c[1]}
	}
	return route, nil
}
