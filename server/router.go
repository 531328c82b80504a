package server

import (
	"github.com/gorilla/mux"
)

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/ws", s.wsHandler).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/simulation/status", s.getStatus).Methods("GET")
	api.HandleFunc("/simulation/snapshot", s.getSnapshot).Methods("GET")
	api.HandleFunc("/simulation/start", s.postStart).Methods("POST")
	api.HandleFunc("/simulation/pause", s.postPause).Methods("POST")
	api.HandleFunc("/simulation/resume", s.postResume).Methods("POST")
	api.HandleFunc("/simulation/stop", s.postStop).Methods("POST")
	api.HandleFunc("/simulation/reset", s.postReset).Methods("POST")
	api.HandleFunc("/simulation/step", s.postStep).Methods("POST")
	api.HandleFunc("/simulation/speed", s.patchSpeed).Methods("PATCH")

	api.HandleFunc("/config", s.getConfig).Methods("GET")
	api.HandleFunc("/config", s.putConfig).Methods("PUT")
	api.HandleFunc("/config/validate", s.postValidateConfig).Methods("POST")

	api.HandleFunc("/metrics/current", s.getCurrentMetrics).Methods("GET")
	api.HandleFunc("/metrics/summary", s.getMetricsSummary).Methods("GET")
	api.HandleFunc("/metrics/stations/{id}/swaps", s.getStationSwaps).Methods("GET")

	api.HandleFunc("/scooters/{id}/destination", s.putDestination).Methods("PUT")
	api.HandleFunc("/scooters/{id}/destination", s.deleteDestination).Methods("DELETE")

	return r
}
