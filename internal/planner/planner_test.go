package planner_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
	"github.com/couchcryptid/trip-safety-service/internal/planner"
)

// --- mocks ---

type mockHazardSource struct {
	catalog domain.HazardCatalog
	err     error
}

func (m *mockHazardSource) Catalog(_ context.Context) (domain.HazardCatalog, error) {
	return m.catalog, m.err
}

type mockRouter struct {
	mu      sync.Mutex
	queries []domain.RouteQuery
	route   []domain.Coordinate
	err     error
}

func (m *mockRouter) PlanRoute(_ context.Context, q domain.RouteQuery) ([]domain.Coordinate, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.route, nil
}

func (m *mockRouter) lastQuery(t *testing.T) domain.RouteQuery {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.queries)
	return m.queries[len(m.queries)-1]
}

// ringAround builds a small square hazard ring centered on the coordinate.
func ringAround(c domain.Coordinate, half float64) []domain.Coordinate {
	return []domain.Coordinate{
		{Lat: c.Lat - half, Lon: c.Lon - half},
		{Lat: c.Lat - half, Lon: c.Lon + half},
		{Lat: c.Lat + half, Lon: c.Lon + half},
		{Lat: c.Lat + half, Lon: c.Lon - half},
	}
}

var (
	start = domain.Coordinate{Lat: 50.054, Lon: 19.9445}
	end   = domain.Coordinate{Lat: 50.070, Lon: 19.9600}
)

func newPlanner(hazards domain.HazardSource, safe, fast domain.Router) *planner.Planner {
	return planner.New(hazards, safe, fast, 50000, slog.Default(), observability.NewMetricsForTesting())
}

// --- PlanSafeRoute ---

func TestPlanSafeRoute_HappyPath(t *testing.T) {
	mid := domain.Coordinate{Lat: 50.060, Lon: 19.9500}
	hazardRing := ringAround(mid, 0.002)

	src := &mockHazardSource{catalog: domain.HazardCatalog{Features: []domain.HazardFeature{
		{NameID: 10, Polygon: hazardRing}, // violent crime, severity 10
	}}}
	safe := &mockRouter{route: []domain.Coordinate{start, mid, end}}
	fast := &mockRouter{}

	p := newPlanner(src, safe, fast)

	result, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 0, Mode: domain.ModeCar,
	})
	require.NoError(t, err)

	assert.False(t, result.NoRoute)
	assert.Len(t, result.Route, 3)
	assert.Equal(t, 10, result.Threshold, "dial 0 demands the maximum threshold")
	assert.Equal(t, "critical", result.Band.Label)
	require.Len(t, result.Hazards, 1)
	assert.False(t, result.PlannedAt.IsZero())

	// The routing engine must have been given the hazard as an exclusion.
	q := safe.lastQuery(t)
	assert.Equal(t, "auto", q.Costing)
	require.Len(t, q.ExcludePolygons, 1)
	assert.Len(t, q.ExcludePolygons[0], 5, "ring should be closed")

	// The middle route point sits inside the hazard.
	require.Len(t, result.Profile, 3)
	assert.Equal(t, 0.0, result.Profile[0])
	assert.Equal(t, 1.0, result.Profile[1])
	assert.Equal(t, 0.0, result.Profile[2])

	assert.Positive(t, result.Carbon.DistanceKm)
	assert.Empty(t, fast.queries, "optimal router must not be consulted")
}

func TestPlanSafeRoute_ThresholdFiltersLowSeverity(t *testing.T) {
	mid := domain.Coordinate{Lat: 50.060, Lon: 19.9500}

	src := &mockHazardSource{catalog: domain.HazardCatalog{Features: []domain.HazardFeature{
		{NameID: 1, Polygon: ringAround(mid, 0.002)},  // graffiti, severity 1
		{NameID: 10, Polygon: ringAround(mid, 0.004)}, // violent crime, severity 10
	}}}
	safe := &mockRouter{route: []domain.Coordinate{start, end}}

	p := newPlanner(src, safe, &mockRouter{})

	// Dial 100 → threshold 1: everything qualifies.
	result, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Threshold)
	assert.Len(t, result.Hazards, 2)

	// Dial 0 → threshold 10: only the severe hazard survives.
	result, err = p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Threshold)
	require.Len(t, result.Hazards, 1)
	assert.Equal(t, 10, result.Hazards[0].NameID)
}

func TestPlanSafeRoute_NoRoute(t *testing.T) {
	src := &mockHazardSource{}
	safe := &mockRouter{route: nil} // engine found no path

	p := newPlanner(src, safe, &mockRouter{})

	result, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 50,
	})
	require.NoError(t, err, "no route is a normal negative result")
	assert.True(t, result.NoRoute)
	assert.Empty(t, result.Route)
	assert.Empty(t, result.Profile)
}

func TestPlanSafeRoute_CatalogFailureFailsOpen(t *testing.T) {
	src := &mockHazardSource{err: errors.New("dataset unreachable")}
	safe := &mockRouter{route: []domain.Coordinate{start, end}}

	p := newPlanner(src, safe, &mockRouter{})

	result, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 0,
	})
	require.NoError(t, err, "a missing catalog must not block routing")
	assert.False(t, result.NoRoute)
	assert.Empty(t, result.Hazards)
	assert.Empty(t, safe.lastQuery(t).ExcludePolygons)
}

func TestPlanSafeRoute_RouterError(t *testing.T) {
	src := &mockHazardSource{}
	safe := &mockRouter{err: errors.New("upstream 500")}

	p := newPlanner(src, safe, &mockRouter{})

	_, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 50,
	})
	require.Error(t, err)
}

func TestPlanSafeRoute_InvalidRequest(t *testing.T) {
	p := newPlanner(&mockHazardSource{}, &mockRouter{}, &mockRouter{})

	_, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 101,
	})
	require.ErrorIs(t, err, planner.ErrInvalidRequest)

	_, err = p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 50, Mode: "hovercraft",
	})
	require.ErrorIs(t, err, planner.ErrInvalidRequest)
}

func TestPlanSafeRoute_TravelModeCosting(t *testing.T) {
	safe := &mockRouter{route: []domain.Coordinate{start, end}}
	p := newPlanner(&mockHazardSource{}, safe, &mockRouter{})

	_, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 50, Mode: domain.ModeFoot,
	})
	require.NoError(t, err)
	assert.Equal(t, "pedestrian", safe.lastQuery(t).Costing)
}

// --- PlanOptimalRoute ---

func TestPlanOptimalRoute(t *testing.T) {
	fast := &mockRouter{route: []domain.Coordinate{start, end}}
	safe := &mockRouter{}
	p := newPlanner(&mockHazardSource{}, safe, fast)

	result, err := p.PlanOptimalRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, Mode: domain.ModeBicycle,
	})
	require.NoError(t, err)

	assert.False(t, result.NoRoute)
	assert.Len(t, result.Route, 2)
	assert.Positive(t, result.Carbon.DistanceKm)

	q := fast.lastQuery(t)
	assert.Equal(t, "bicycle", q.Costing)
	assert.Empty(t, q.ExcludePolygons, "optimal routing never excludes hazards")
	assert.Empty(t, safe.queries)
}

// --- readiness and sequencing ---

func TestPlanner_Readiness(t *testing.T) {
	safe := &mockRouter{route: []domain.Coordinate{start, end}}
	p := newPlanner(&mockHazardSource{}, safe, &mockRouter{})

	require.Error(t, p.CheckReadiness(context.Background()))

	_, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{
		Start: start, End: end, DangerLevel: 50,
	})
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPlanner_SequenceIncreases(t *testing.T) {
	safe := &mockRouter{route: []domain.Coordinate{start, end}}
	p := newPlanner(&mockHazardSource{}, safe, &mockRouter{})

	r1, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{Start: start, End: end, DangerLevel: 50})
	require.NoError(t, err)
	r2, err := p.PlanSafeRoute(context.Background(), domain.PlanRequest{Start: start, End: end, DangerLevel: 50})
	require.NoError(t, err)

	assert.Greater(t, r2.Seq, r1.Seq)
}
