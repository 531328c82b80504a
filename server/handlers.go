package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	sim "github.com/swap-sim/swap-sim/sim"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes. Invalid transitions
// and bad configuration are client errors; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, sim.ErrInvalidTransition) || errors.Is(err, sim.ErrConfigInvalid) || errors.Is(err, sim.ErrInvalidSchedule) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.StatusInfo())
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) postStart(w http.ResponseWriter, r *http.Request) {
	session, err := s.controller.Start()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": session})
}

func (s *Server) postPause(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Pause(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.StatusInfo())
}

func (s *Server) postResume(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Resume(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.StatusInfo())
}

func (s *Server) postStop(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Stop(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.StatusInfo())
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.StatusInfo())
}

func (s *Server) postStep(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.StepOnce(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.StatusInfo())
}

func (s *Server) patchSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	applied := s.controller.SetSpeed(req.Speed)
	writeJSON(w, http.StatusOK, map[string]float64{"speed": applied})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Config())
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var cfg sim.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.controller.Configure(cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.Config())
}

func (s *Server) postValidateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg sim.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := cfg.Validate(); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) getCurrentMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.CurrentMetrics())
}

func (s *Server) getMetricsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.MetricsSummary())
}

// parseLogQuery reads the swap-log query parameters. Malformed numbers fall
// back to defaults rather than failing the request.
func parseLogQuery(r *http.Request) sim.LogQuery {
	qs := r.URL.Query()
	q := sim.LogQuery{
		SortBy: qs.Get("sort_by"),
		Order:  qs.Get("order"),
	}
	if v, err := strconv.Atoi(qs.Get("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if v, err := strconv.Atoi(qs.Get("offset")); err == nil && v > 0 {
		q.Offset = v
	}
	if v, err := strconv.ParseFloat(qs.Get("since"), 64); err == nil && v > 0 {
		q.Since = v
	}
	return q
}

func (s *Server) getStationSwaps(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]
	records, err := s.controller.StationSwapLog(stationID, parseLogQuery(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"station_id": stationID,
		"swaps":      records,
		"count":      len(records),
	})
}

func (s *Server) putDestination(w http.ResponseWriter, r *http.Request) {
	scooterID := mux.Vars(r)["id"]
	if !s.controller.HasScooter(scooterID) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown scooter " + scooterID})
		return
	}
	var dest sim.Position
	if err := json.NewDecoder(r.Body).Decode(&dest); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.controller.SetDestination(scooterID, dest); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scooter_id": scooterID, "destination": dest})
}

func (s *Server) deleteDestination(w http.ResponseWriter, r *http.Request) {
	scooterID := mux.Vars(r)["id"]
	s.controller.ClearDestination(scooterID)
	w.WriteHeader(http.StatusNoContent)
}
