package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	OpsAddr         string
	CORSOrigins     []string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Routing engines.
	ValhallaURL    string
	OSRMURL        string
	RequestTimeout time.Duration

	// Geocoding (Nominatim).
	NominatimURL       string
	NominatimUserAgent string
	GeocodeCacheSize   int
	GeocodeRateLimit   float64 // requests per second

	// Hazard dataset. A URL or a local file path; empty disables avoidance
	// (the service still routes, fail open).
	HazardDatasetURL   string
	HazardBufferMeters float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := parseDuration("REQUEST_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	bufferMeters, err := parsePositiveFloat("HAZARD_BUFFER_METERS", 50000)
	if err != nil {
		return nil, err
	}
	rateLimit, err := parsePositiveFloat("GEOCODE_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		OpsAddr:         envOrDefault("OPS_ADDR", ":9090"),
		CORSOrigins:     splitList(envOrDefault("CORS_ORIGINS", "*")),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ValhallaURL:    envOrDefault("VALHALLA_URL", "https://valhalla1.openstreetmap.de/route"),
		OSRMURL:        envOrDefault("OSRM_URL", "https://router.project-osrm.org/route/v1/driving"),
		RequestTimeout: requestTimeout,

		NominatimURL:       envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "trip-safety-service/1.0"),
		GeocodeCacheSize:   parseCacheSize(),
		GeocodeRateLimit:   rateLimit,

		HazardDatasetURL:   os.Getenv("HAZARD_DATASET_URL"),
		HazardBufferMeters: bufferMeters,
	}

	if cfg.ValhallaURL == "" {
		return nil, errors.New("VALHALLA_URL is required")
	}
	if cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT must not be empty; the geocoding service requires a distinguishing client identifier")
	}
	if cfg.HTTPAddr == cfg.OpsAddr {
		return nil, errors.New("HTTP_ADDR and OPS_ADDR must differ")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
