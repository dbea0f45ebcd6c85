// Package planner orchestrates a single route planning pass: load the hazard
// catalog, filter it against the request's risk dial and bounding region,
// build exclusion polygons, ask the routing engine for a path, and classify
// the result. The planner itself is stateless between calls; the LatestRoute
// holder carries the last-write-wins result surface.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
)

// ErrInvalidRequest marks plan requests rejected before any upstream call.
// Callers can map it to a client error.
var ErrInvalidRequest = errors.New("invalid plan request")

// Planner wires the hazard source and routing engines into the safe-route
// computation.
type Planner struct {
	hazards      domain.HazardSource
	safeRouter   domain.Router // Valhalla: supports exclusion polygons
	fastRouter   domain.Router // OSRM: shortest path, no exclusions
	logger       *slog.Logger
	metrics      *observability.Metrics
	bufferMeters float64
	seq          atomic.Uint64
	ready        atomic.Bool
}

// New creates a Planner with the given ports and observability.
func New(hazards domain.HazardSource, safeRouter, fastRouter domain.Router, bufferMeters float64, logger *slog.Logger, metrics *observability.Metrics) *Planner {
	return &Planner{
		hazards:      hazards,
		safeRouter:   safeRouter,
		fastRouter:   fastRouter,
		bufferMeters: bufferMeters,
		logger:       logger,
		metrics:      metrics,
	}
}

// CheckReadiness returns nil once the planner has produced at least one
// result, or an error describing why the service is not yet ready.
func (p *Planner) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("planner has not produced any routes yet")
	}
	return nil
}

// PlanSafeRoute computes a hazard-aware route between the request's start and
// end. Hazards at or above the dial-derived threshold whose polygons touch
// the bounding region become exclusion zones for the routing engine. A
// NoRoute result is normal when the exclusions wall off every path.
func (p *Planner) PlanSafeRoute(ctx context.Context, req domain.PlanRequest) (domain.PlanResult, error) {
	if err := req.Mode.Validate(); err != nil {
		return domain.PlanResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.DangerLevel < 0 || req.DangerLevel > 100 {
		return domain.PlanResult{}, fmt.Errorf("%w: danger level %d outside 0-100", ErrInvalidRequest, req.DangerLevel)
	}

	seq := p.seq.Add(1)
	threshold := domain.ComputeThreshold(req.DangerLevel)
	band := domain.BandForDial(req.DangerLevel)

	catalog, err := p.hazards.Catalog(ctx)
	if err != nil {
		// Fail open: a missing dataset degrades to unfiltered routing
		// rather than blocking trips.
		p.logger.Warn("hazard catalog unavailable, planning without exclusions", "error", err)
		catalog = domain.HazardCatalog{}
	}

	region := domain.ComputeBoundingRegion(req.Start, req.End, p.bufferMeters)
	hazards := domain.FilterHazards(catalog, region, threshold)
	exclusions := domain.BuildExclusions(hazards)

	p.metrics.HazardsSurviving.Observe(float64(len(hazards)))
	p.metrics.ExclusionsSent.Observe(float64(len(exclusions)))
	if dropped := len(hazards) - len(exclusions); dropped > 0 {
		p.metrics.MalformedRings.Add(float64(dropped))
	}

	route, err := p.safeRouter.PlanRoute(ctx, domain.RouteQuery{
		Locations:       []domain.Coordinate{req.Start, req.End},
		Costing:         req.Mode.Costing(),
		ExcludePolygons: exclusions,
	})
	if err != nil {
		return domain.PlanResult{}, fmt.Errorf("plan safe route: %w", err)
	}

	result := domain.PlanResult{
		Seq:       seq,
		Threshold: threshold,
		Band:      band,
		Hazards:   hazards,
		PlannedAt: domain.Now(),
	}
	if route == nil {
		result.NoRoute = true
		p.logger.Info("no route after exclusions",
			"danger_level", req.DangerLevel,
			"threshold", threshold,
			"exclusions", len(exclusions),
		)
		p.ready.Store(true)
		return result, nil
	}

	result.Route = route
	result.Profile = domain.ClassifyRoute(route, hazards)
	result.Carbon = domain.EstimateCarbon(route, req.Mode)
	p.metrics.RoutePoints.Observe(float64(len(route)))

	p.logger.Info("route planned",
		"seq", seq,
		"points", len(route),
		"hazards", len(hazards),
		"exclusions", len(exclusions),
		"threshold", threshold,
		"distance_km", result.Carbon.DistanceKm,
	)
	p.ready.Store(true)
	return result, nil
}

// PlanOptimalRoute computes the unconstrained shortest path, ignoring
// hazards entirely. Used for the side-by-side comparison view.
func (p *Planner) PlanOptimalRoute(ctx context.Context, req domain.PlanRequest) (domain.PlanResult, error) {
	if err := req.Mode.Validate(); err != nil {
		return domain.PlanResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	seq := p.seq.Add(1)

	route, err := p.fastRouter.PlanRoute(ctx, domain.RouteQuery{
		Locations: []domain.Coordinate{req.Start, req.End},
		Costing:   req.Mode.Costing(),
	})
	if err != nil {
		return domain.PlanResult{}, fmt.Errorf("plan optimal route: %w", err)
	}

	result := domain.PlanResult{
		Seq:       seq,
		PlannedAt: domain.Now(),
	}
	if route == nil {
		result.NoRoute = true
		p.ready.Store(true)
		return result, nil
	}

	result.Route = route
	result.Carbon = domain.EstimateCarbon(route, req.Mode)
	p.metrics.RoutePoints.Observe(float64(len(route)))
	p.ready.Store(true)
	return result, nil
}
