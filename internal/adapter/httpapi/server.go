// Package httpapi is the public HTTP surface of the trip planner: route
// planning, geocoding, hazard overlays, and the raw routing proxy the map
// frontend calls directly.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/couchcryptid/trip-safety-service/internal/adapter/valhalla"
	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
	"github.com/couchcryptid/trip-safety-service/internal/planner"
)

// maxBodyBytes caps request bodies. Route requests are tiny; the proxy
// payload carries at most a few exclusion rings.
const maxBodyBytes = 1 << 20

// RoutePlanner is the planning port the API drives.
type RoutePlanner interface {
	PlanSafeRoute(ctx context.Context, req domain.PlanRequest) (domain.PlanResult, error)
	PlanOptimalRoute(ctx context.Context, req domain.PlanRequest) (domain.PlanResult, error)
}

// RoutingProxy forwards a raw routing-engine request and reports the
// upstream status and body verbatim.
type RoutingProxy interface {
	Forward(ctx context.Context, body []byte) (int, []byte, error)
}

// Server is the public API HTTP server.
type Server struct {
	httpServer *http.Server
	planner    RoutePlanner
	geocoder   domain.Geocoder
	hazards    domain.HazardSource
	proxy      RoutingProxy
	latest     *planner.LatestRoute
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Options bundles the ports and settings for NewServer.
type Options struct {
	Addr        string
	Planner     RoutePlanner
	Geocoder    domain.Geocoder
	Hazards     domain.HazardSource
	Proxy       RoutingProxy
	CORSOrigins []string
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// NewServer creates the public API server and mounts all routes.
func NewServer(opts Options) *Server {
	s := &Server{
		planner:  opts.Planner,
		geocoder: opts.Geocoder,
		hazards:  opts.Hazards,
		proxy:    opts.Proxy,
		latest:   &planner.LatestRoute{},
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/route", s.handlePlanRoute)
		r.Post("/route/optimal", s.handlePlanOptimal)
		r.Get("/route/latest", s.handleLatestRoute)
		r.Get("/geocode", s.handleGeocode)
		r.Get("/hazards", s.handleHazards)
		r.Post("/routing", s.handleRoutingProxy)
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("api server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePlanRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePlanRequest(w, r)
	if !ok {
		return
	}

	result, err := s.planner.PlanSafeRoute(r.Context(), req)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	s.latest.Publish(result)
	writeJSON(w, http.StatusOK, newRouteResponse(result))
}

func (s *Server) handlePlanOptimal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePlanRequest(w, r)
	if !ok {
		return
	}

	result, err := s.planner.PlanOptimalRoute(r.Context(), req)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRouteResponse(result))
}

// handleLatestRoute returns the most recently accepted safe-route result,
// letting a reconnecting client restore the map without replanning.
func (s *Server) handleLatestRoute(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latest.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no route planned yet")
		return
	}
	writeJSON(w, http.StatusOK, newRouteResponse(result))
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	results, err := s.geocoder.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("geocode failed", "error", err, "query", query)
		writeError(w, http.StatusBadGateway, "geocoding service unavailable")
		return
	}
	if results == nil {
		results = []domain.GeocodeResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// handleHazards returns the hazard features surviving the dial threshold
// inside the requested bounding box, for map overlay rendering.
func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	dial, err := queryInt(params.Get("danger_level"), 100)
	if err != nil || dial < 0 || dial > 100 {
		writeError(w, http.StatusBadRequest, "danger_level must be an integer 0-100")
		return
	}

	region, err := queryRegion(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	catalog, err := s.hazards.Catalog(r.Context())
	if err != nil {
		// Fail open: no overlay beats no map.
		s.logger.Warn("hazard catalog unavailable for overlay", "error", err)
		catalog = domain.HazardCatalog{}
	}

	features := domain.FilterHazards(catalog, region, domain.ComputeThreshold(dial))
	if features == nil {
		features = []domain.HazardFeature{}
	}
	writeJSON(w, http.StatusOK, hazardsResponse{
		Threshold: domain.ComputeThreshold(dial),
		Band:      domain.BandForDial(dial),
		Features:  features,
	})
}

// handleRoutingProxy relays the request body to the routing engine untouched
// and returns whatever the engine answered, status included.
func (s *Server) handleRoutingProxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	status, respBody, err := s.proxy.Forward(r.Context(), body)
	if err != nil {
		s.metrics.ProxyRequests.WithLabelValues("network_error").Inc()
		s.logger.Error("routing proxy failed", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("routing engine unreachable")) //nolint:errcheck
		return
	}

	if status == http.StatusOK {
		s.metrics.ProxyRequests.WithLabelValues("relayed").Inc()
	} else {
		s.metrics.ProxyRequests.WithLabelValues("upstream_error").Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respBody) //nolint:errcheck
}

// --- request/response plumbing ---

func (s *Server) decodePlanRequest(w http.ResponseWriter, r *http.Request) (domain.PlanRequest, bool) {
	var req domain.PlanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return domain.PlanRequest{}, false
	}
	return req, true
}

func (s *Server) writePlanError(w http.ResponseWriter, err error) {
	var upstream *valhalla.UpstreamError
	switch {
	case errors.Is(err, planner.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		s.logger.Error("routing engine rejected request", "status", upstream.Status)
		writeError(w, http.StatusBadGateway, "routing engine error")
	default:
		s.logger.Error("route planning failed", "error", err)
		writeError(w, http.StatusBadGateway, "route planning failed")
	}
}

type hazardsResponse struct {
	Threshold int                    `json:"threshold"`
	Band      domain.DangerBand      `json:"band"`
	Features  []domain.HazardFeature `json:"features"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
