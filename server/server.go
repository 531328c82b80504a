// Package server exposes the simulation controller over HTTP: a JSON control
// API under /api/v1 and a websocket stream of live state snapshots.
package server

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"

	sim "github.com/swap-sim/swap-sim/sim"
)

// Server owns the HTTP surface around a simulation controller.
type Server struct {
	controller *sim.Controller
	hub        *Hub
}

// New creates a server and registers its hub as a snapshot observer, so
// websocket clients receive state updates whenever the simulation advances.
func New(controller *sim.Controller) *Server {
	s := &Server{
		controller: controller,
		hub:        NewHub(),
	}
	controller.AddObserver(s.hub.Broadcast)
	return s
}

// Handler returns the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(os.Stdout, cors(s.router()))
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}
