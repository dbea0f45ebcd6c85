package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/trip-safety-service/internal/adapter/hazards"
	"github.com/couchcryptid/trip-safety-service/internal/adapter/httpapi"
	"github.com/couchcryptid/trip-safety-service/internal/adapter/nominatim"
	"github.com/couchcryptid/trip-safety-service/internal/adapter/ops"
	"github.com/couchcryptid/trip-safety-service/internal/adapter/osrm"
	"github.com/couchcryptid/trip-safety-service/internal/adapter/valhalla"
	"github.com/couchcryptid/trip-safety-service/internal/config"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
	"github.com/couchcryptid/trip-safety-service/internal/planner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store := hazards.NewStore(cfg.HazardDatasetURL, &http.Client{Timeout: cfg.RequestTimeout}, logger, metrics)

	safeRouter := valhalla.NewClient(cfg.ValhallaURL, cfg.RequestTimeout, logger, metrics)
	fastRouter := osrm.NewClient(cfg.OSRMURL, cfg.RequestTimeout, logger, metrics)

	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.RequestTimeout, cfg.GeocodeRateLimit, logger, metrics),
		cfg.GeocodeCacheSize,
		metrics,
	)

	p := planner.New(store, safeRouter, fastRouter, cfg.HazardBufferMeters, logger, metrics)

	apiSrv := httpapi.NewServer(httpapi.Options{
		Addr:        cfg.HTTPAddr,
		Planner:     p,
		Geocoder:    geocoder,
		Hazards:     store,
		Proxy:       safeRouter,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		Metrics:     metrics,
	})

	opsSrv := ops.NewServer(cfg.OpsAddr, []ops.Check{
		{Name: "planner", Checker: p},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the hazard catalog so the first route request does not pay the
	// download. A failure is logged and the service routes without exclusions.
	go func() {
		if _, err := store.Catalog(ctx); err != nil {
			logger.Warn("hazard catalog preload failed, routing without exclusions", "error", err)
		}
	}()

	go func() {
		if err := apiSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", "error", err)
		}
	}()
	go func() {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
