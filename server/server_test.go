package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/swap-sim/swap-sim/sim"
)

func newTestServer(t *testing.T) (*Server, *sim.Controller) {
	t.Helper()
	controller, err := sim.NewController()
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	cfg.Scooters.Count = 5
	require.NoError(t, controller.Configure(cfg))
	return New(controller), controller
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, "GET", "/api/v1/simulation/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info sim.StatusInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, sim.StatusIdle, info.Status)
	assert.Equal(t, 0.0, info.SimulationTime)
}

func TestLifecycleEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	// Pause before start is a client error
	rec := doJSON(t, s, "POST", "/api/v1/simulation/pause", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, "POST", "/api/v1/simulation/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var started map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.NotEmpty(t, started["session_id"])

	rec = doJSON(t, s, "POST", "/api/v1/simulation/pause", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, "POST", "/api/v1/simulation/resume", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, "POST", "/api/v1/simulation/stop", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, "POST", "/api/v1/simulation/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStepAndSnapshotEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/v1/simulation/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, "GET", "/api/v1/simulation/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap sim.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Scooters, 5)
	assert.Equal(t, int64(1), snap.Tick)
	assert.Equal(t, sim.StatusPaused, snap.Status)
}

func TestSpeedEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "PATCH", "/api/v1/simulation/speed", map[string]float64{"speed": 500})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sim.MaxSpeed, resp["speed"], "out-of-range speed is clamped")

	rec = doJSON(t, s, "PATCH", "/api/v1/simulation/speed", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/v1/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg sim.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, 5, cfg.Scooters.Count)

	// An invalid config is rejected and leaves the active one untouched
	bad := cfg
	bad.Grid.Width = 1
	rec = doJSON(t, s, "PUT", "/api/v1/config", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, "GET", "/api/v1/config", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, 100, cfg.Grid.Width)

	// Validation endpoint reports without applying
	rec = doJSON(t, s, "POST", "/api/v1/config/validate", bad)
	require.Equal(t, http.StatusOK, rec.Code)
	var verdict map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.Equal(t, false, verdict["valid"])

	good := sim.DefaultConfig()
	rec = doJSON(t, s, "PUT", "/api/v1/config", good)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStationSwapsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/v1/metrics/stations/station_0/swaps?limit=10&order=desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		StationID string           `json:"station_id"`
		Swaps     []sim.SwapRecord `json:"swaps"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "station_0", resp.StationID)

	rec = doJSON(t, s, "GET", "/api/v1/metrics/stations/station_42/swaps", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/v1/metrics/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current sim.CurrentMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, 0, current.TotalSwaps)

	rec = doJSON(t, s, "GET", "/api/v1/metrics/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary sim.MetricsSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.TotalSwaps)
}

func TestDestinationEndpoints(t *testing.T) {
	controller, err := sim.NewController()
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	cfg.Scooters.Count = 2
	cfg.Movement = sim.MovementDirected
	require.NoError(t, controller.Configure(cfg))
	s := New(controller)

	rec := doJSON(t, s, "PUT", "/api/v1/scooters/scooter_0/destination", sim.Position{X: 20, Y: 30})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Out-of-grid destination is a client error
	rec = doJSON(t, s, "PUT", "/api/v1/scooters/scooter_0/destination", sim.Position{X: 500, Y: 30})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown scooter is 404
	rec = doJSON(t, s, "PUT", "/api/v1/scooters/scooter_42/destination", sim.Position{X: 20, Y: 30})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, "DELETE", "/api/v1/scooters/scooter_0/destination", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWebSocketInitialFrameThenBroadcast(t *testing.T) {
	s, controller := newTestServer(t)
	srv := httptest.NewServer(s.router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// The initial snapshot arrives before the connection is eligible for
	// hub broadcasts
	var frame stateUpdate
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "state_update", frame.Type)
	assert.Equal(t, 0.0, frame.Snapshot.SimulationTime)

	s.hub.Broadcast(controller.Snapshot())
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "state_update", frame.Type)
}
