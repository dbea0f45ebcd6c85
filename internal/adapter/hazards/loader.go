// Package hazards loads the static hazard polygon dataset.
//
// The dataset is a GeoJSON FeatureCollection where each feature carries an
// integer "name_id" property and Polygon or MultiPolygon geometry. Only the
// exterior ring of the first polygon is used; holes and secondary polygons
// are ignored, matching how the dataset build emits merged regions.
package hazards

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
)

// LoadError wraps any failure to fetch or parse the dataset. Callers treat
// it as "no hazards known" and keep routing (fail open).
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load hazard dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store fetches the hazard dataset exactly once and serves the cached
// immutable snapshot afterwards. It implements domain.HazardSource.
type Store struct {
	source     string // http(s) URL or local file path; empty means no dataset
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics

	once    sync.Once
	catalog domain.HazardCatalog
	loadErr error
}

// NewStore creates a Store reading from the given source.
func NewStore(source string, httpClient *http.Client, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Store{
		source:     source,
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
	}
}

// Catalog returns the dataset snapshot, loading it on first call. A load
// failure is returned as *LoadError and is sticky: the process does not
// retry, it runs with an empty catalog for its lifetime.
func (s *Store) Catalog(ctx context.Context) (domain.HazardCatalog, error) {
	s.once.Do(func() {
		s.catalog, s.loadErr = s.load(ctx)
		if s.loadErr != nil {
			s.metrics.CatalogLoaded.Set(0)
			return
		}
		s.metrics.CatalogLoaded.Set(1)
		s.metrics.CatalogFeatures.Set(float64(len(s.catalog.Features)))
		s.logger.Info("hazard catalog loaded",
			"source", s.source,
			"features", len(s.catalog.Features),
		)
	})
	return s.catalog, s.loadErr
}

func (s *Store) load(ctx context.Context) (domain.HazardCatalog, error) {
	if s.source == "" {
		s.logger.Info("no hazard dataset configured, avoidance disabled")
		return domain.HazardCatalog{}, nil
	}

	data, err := s.fetch(ctx)
	if err != nil {
		return domain.HazardCatalog{}, &LoadError{Source: s.source, Err: err}
	}

	catalog, err := Parse(data, s.logger)
	if err != nil {
		return domain.HazardCatalog{}, &LoadError{Source: s.source, Err: err}
	}
	return catalog, nil
}

func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.source, "http://") && !strings.HasPrefix(s.source, "https://") {
		return os.ReadFile(s.source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Parse decodes a GeoJSON FeatureCollection into a hazard catalog. Features
// without usable geometry or a name_id property are skipped with a log line;
// a malformed feature never fails the whole dataset.
func Parse(data []byte, logger *slog.Logger) (domain.HazardCatalog, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return domain.HazardCatalog{}, fmt.Errorf("parse feature collection: %w", err)
	}

	features := make([]domain.HazardFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		nameID, ok := nameIDProperty(f.Properties)
		if !ok {
			logger.Warn("hazard feature missing name_id, skipping", "index", i)
			continue
		}

		ring, ok := exteriorRing(f.Geometry)
		if !ok {
			logger.Warn("hazard feature has no polygon geometry, skipping",
				"index", i, "name_id", nameID)
			continue
		}

		features = append(features, domain.HazardFeature{
			NameID:  nameID,
			Polygon: ring,
		})
	}

	return domain.HazardCatalog{Features: features}, nil
}

// nameIDProperty extracts the integer name_id. JSON numbers decode as
// float64; string-typed ids are rejected rather than coerced.
func nameIDProperty(props map[string]interface{}) (int, bool) {
	v, ok := props["name_id"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// exteriorRing pulls the outer ring out of a Polygon, or the first polygon's
// outer ring out of a MultiPolygon, as [lat, lon] domain coordinates.
func exteriorRing(g geom.T) ([]domain.Coordinate, bool) {
	var ring []geom.Coord
	switch p := g.(type) {
	case *geom.Polygon:
		if p.NumLinearRings() == 0 {
			return nil, false
		}
		ring = p.LinearRing(0).Coords()
	case *geom.MultiPolygon:
		if p.NumPolygons() == 0 || p.Polygon(0).NumLinearRings() == 0 {
			return nil, false
		}
		ring = p.Polygon(0).LinearRing(0).Coords()
	default:
		return nil, false
	}

	out := make([]domain.Coordinate, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		out = append(out, domain.Coordinate{Lon: c.X(), Lat: c.Y()})
	}
	return out, true
}
