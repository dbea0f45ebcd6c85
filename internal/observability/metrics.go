package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// route-safety pipeline.
type Metrics struct {
	RoutesPlanned   *prometheus.CounterVec   // labels: engine={valhalla,osrm}, outcome={success,no_route,error}
	RoutingDuration *prometheus.HistogramVec // labels: engine
	RoutePoints     prometheus.Histogram

	// Hazard filtering and exclusion construction.
	HazardsSurviving prometheus.Histogram
	ExclusionsSent   prometheus.Histogram
	MalformedRings   prometheus.Counter

	// Hazard catalog.
	CatalogLoaded   prometheus.Gauge
	CatalogFeatures prometheus.Gauge

	// Geocoding.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Valhalla proxy passthrough.
	ProxyRequests *prometheus.CounterVec // labels: outcome={relayed,upstream_error,network_error}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RoutesPlanned,
		m.RoutingDuration,
		m.RoutePoints,
		m.HazardsSurviving,
		m.ExclusionsSent,
		m.MalformedRings,
		m.CatalogLoaded,
		m.CatalogFeatures,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.ProxyRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RoutesPlanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trip_safety",
			Name:      "routes_planned_total",
			Help:      "Route planning requests by engine and outcome.",
		}, []string{"engine", "outcome"}),
		RoutingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trip_safety",
			Name:      "routing_request_duration_seconds",
			Help:      "Routing engine request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"engine"}),
		RoutePoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trip_safety",
			Name:      "route_points",
			Help:      "Number of decoded points per returned route.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		HazardsSurviving: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trip_safety",
			Name:      "hazards_surviving_filter",
			Help:      "Hazards remaining after severity and bounding-region filtering.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		ExclusionsSent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trip_safety",
			Name:      "exclusion_polygons_sent",
			Help:      "Exclusion polygons attached to a routing request.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		MalformedRings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trip_safety",
			Name:      "malformed_rings_dropped_total",
			Help:      "Hazard rings dropped during exclusion sanitization.",
		}),
		CatalogLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trip_safety",
			Name:      "hazard_catalog_loaded",
			Help:      "1 when the hazard catalog loaded successfully, 0 otherwise.",
		}),
		CatalogFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trip_safety",
			Name:      "hazard_catalog_features",
			Help:      "Number of hazard features in the loaded catalog.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trip_safety",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trip_safety",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		ProxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trip_safety",
			Name:      "routing_proxy_requests_total",
			Help:      "Valhalla proxy requests by outcome.",
		}, []string{"outcome"}),
	}
}
