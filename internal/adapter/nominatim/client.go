// Package nominatim implements address autocomplete against the OSM
// Nominatim search API. Requests are rate limited to stay inside the public
// instance's usage policy and carry a distinguishing User-Agent, which
// Nominatim requires.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
)

// maxResults caps the number of autocomplete candidates per query.
const maxResults = 5

// Client implements domain.Geocoder using the Nominatim search API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim client. ratePerSec throttles outgoing
// requests; the public instance allows at most 1 req/s.
func NewClient(baseURL, userAgent string, timeout time.Duration, ratePerSec float64, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
		logger:     logger,
		metrics:    metrics,
	}
}

// Nominatim response item. lat/lon arrive as strings.
type searchItem struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// Search resolves a free-text query to at most 5 candidate locations.
// An empty query returns no results without hitting the API.
func (c *Client) Search(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	if query == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"q":              {query},
		"limit":          {strconv.Itoa(maxResults)},
		"format":         {"json"},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("nominatim: status %d: %s", resp.StatusCode, body)
	}

	var items []searchItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]domain.GeocodeResult, 0, len(items))
	for _, item := range items {
		lat, errLat := strconv.ParseFloat(item.Lat, 64)
		lon, errLon := strconv.ParseFloat(item.Lon, 64)
		if errLat != nil || errLon != nil {
			c.logger.Warn("nominatim result with unparseable coordinates, skipping",
				"display_name", item.DisplayName)
			continue
		}
		results = append(results, domain.GeocodeResult{
			Lat:         lat,
			Lon:         lon,
			DisplayName: item.DisplayName,
			Address:     item.Address,
		})
	}

	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return results, nil
}
