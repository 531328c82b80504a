package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	sim "github.com/swap-sim/swap-sim/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// stateUpdate is the wire frame pushed to websocket clients.
type stateUpdate struct {
	Type     string       `json:"type"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

// Hub fans simulation snapshots out to connected websocket clients. Slow or
// broken clients are dropped rather than allowed to stall the broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Broadcast pushes a snapshot to every connected client. Satisfies
// sim.Observer.
func (h *Hub) Broadcast(snap sim.Snapshot) {
	update := stateUpdate{Type: "state_update", Snapshot: snap}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(update); err != nil {
			logrus.Debugf("dropping websocket client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// add registers a client connection.
func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	logrus.Infof("websocket client connected, total %d", n)
}

// remove drops a client connection.
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
	}
	n := len(h.clients)
	h.mu.Unlock()
	conn.Close()
	logrus.Infof("websocket client disconnected, remaining %d", n)
}

// wsHandler upgrades the connection, sends an initial snapshot, and drains
// inbound messages until the client goes away.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}
	// The initial snapshot goes out before the connection joins the hub, so
	// every write after registration happens under the hub mutex and never
	// races a Broadcast.
	if err := conn.WriteJSON(stateUpdate{Type: "state_update", Snapshot: s.controller.Snapshot()}); err != nil {
		conn.Close()
		return
	}
	s.hub.add(conn)

	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Debugf("websocket read error: %v", err)
				}
				return
			}
		}
	}()
}
