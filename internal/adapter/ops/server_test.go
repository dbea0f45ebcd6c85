package ops_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/trip-safety-service/internal/adapter/ops"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(checks ...ops.Check) *ops.Server {
	return ops.NewServer(":0", checks, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(ops.Check{Name: "planner", Checker: &mockReadiness{}})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenAllChecksPass(t *testing.T) {
	srv := newTestServer(
		ops.Check{Name: "planner", Checker: &mockReadiness{}},
		ops.Check{Name: "hazard_catalog", Checker: &mockReadiness{}},
	)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["planner"])
	assert.Equal(t, "ok", body.Checks["hazard_catalog"])
}

func TestReadyzReturns503WhenAnyCheckFails(t *testing.T) {
	srv := newTestServer(
		ops.Check{Name: "planner", Checker: &mockReadiness{}},
		ops.Check{Name: "hazard_catalog", Checker: &mockReadiness{err: fmt.Errorf("dataset not loaded")}},
	)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Status)
	assert.Equal(t, "ok", body.Checks["planner"])
	assert.Equal(t, "dataset not loaded", body.Checks["hazard_catalog"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
