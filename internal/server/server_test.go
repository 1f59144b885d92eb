package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/di"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	testhelpers "github.com/aristath/rebalancer/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, history bool) *Server {
	t.Helper()
	cfg := &config.Config{
		DataDir: t.TempDir(),
		Port:    8001,
		DevMode: true,
		Solver: config.SolverConfig{
			Engine:  "simplex",
			Timeout: 10 * time.Second,
		},
		Rounding: rebalancing.RoundTruncate,
		History:  history,
	}

	container, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	return New(Config{
		Log:       zerolog.Nop(),
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, true)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "rebalancer", response["service"])
}

func TestServer_OptimizeAndListRuns(t *testing.T) {
	s := newTestServer(t, true)

	body, err := json.Marshal(testhelpers.NewFundedReferenceRequest())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/rebalancing/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rebalancing/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response["data"], 1)
}

func TestServer_RunsWithoutHistory(t *testing.T) {
	s := newTestServer(t, false)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rebalancing/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/rebalancing/optimize", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RequestTimeout(t *testing.T) {
	s := &Server{cfg: &config.Config{Solver: config.SolverConfig{Timeout: 30 * time.Second}}}
	assert.Equal(t, 60*time.Second, s.requestTimeout())

	s.cfg.Solver.Timeout = 120 * time.Second
	assert.Equal(t, 130*time.Second, s.requestTimeout())
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := newTestServer(t, false)
	s.server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
