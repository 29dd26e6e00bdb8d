// Package websocket streams newly landed tournament games to
// subscribers. Clients may narrow the feed to season slices with a
// subscribe frame; everything else arrives as it is upserted.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the dashboard host is fixed
	},
}

// Server owns the live game feed endpoint.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	log    *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a WebSocket server. Start launches it.
func NewServer(log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	log = log.Named("websocket")

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		hub:    NewHub(log),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs the hub and serves the feed until Shutdown.
func (s *Server) Start(port string) error {
	s.port = port
	go s.hub.Run(s.ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/games", s.handleGames)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	s.log.Info("websocket server listening", "port", port)
	return s.server.ListenAndServe()
}

// handleGames upgrades the connection and attaches it to the hub.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.New().String(), conn, s.hub, s.log)
	s.hub.Register(client)

	go client.writePump(s.ctx)
	go client.readPump(s.ctx)
}

// handleHealth reports feed status and hub counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"hub":    s.hub.Metrics(),
	})
}

// BroadcastGame feeds one landed game to matching subscribers.
func (s *Server) BroadcastGame(game *store.Game) {
	s.hub.Broadcast(game)
}

// Hub exposes the hub for wiring and tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Shutdown stops the hub and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
