package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/store"
)

const broadcastBuffer = 1000

// Hub fans newly landed games out to every matching subscriber.
type Hub struct {
	log *logging.Logger

	clientsMu sync.RWMutex
	clients   map[*Client]bool

	broadcast  chan *store.Game
	register   chan *Client
	unregister chan *Client

	statsMu          sync.Mutex
	totalConnections int64
	gamesBroadcast   int64
}

// NewHub creates a hub. Call Run to start delivery.
func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Default()
	}
	return &Hub{
		log:        log.Named("hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *store.Game, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run delivers games and membership changes until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case game := <-h.broadcast:
			h.broadcastGame(game)
		}
	}
}

// Register adds a subscriber to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a subscriber from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues a game for delivery without blocking the caller.
func (h *Hub) Broadcast(game *store.Game) {
	select {
	case h.broadcast <- game:
	default:
		h.log.Warn("broadcast buffer full, dropping game", "external_id", game.ExternalID)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics reports hub counters for the health endpoint.
func (h *Hub) Metrics() map[string]interface{} {
	h.statsMu.Lock()
	totalConnections := h.totalConnections
	gamesBroadcast := h.gamesBroadcast
	h.statsMu.Unlock()

	return map[string]interface{}{
		"active_clients":    h.ClientCount(),
		"total_connections": totalConnections,
		"games_broadcast":   gamesBroadcast,
		"buffer_capacity":   broadcastBuffer,
		"buffer_usage":      len(h.broadcast),
	}
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true

	h.statsMu.Lock()
	h.totalConnections++
	h.statsMu.Unlock()

	h.log.Debug("client connected", "client_id", c.id, "active", len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Debug("client disconnected", "client_id", c.id, "active", len(h.clients))
	}
}

func (h *Hub) broadcastGame(game *store.Game) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := ServerMessage{
		Type:      MessageGame,
		Payload:   game,
		Timestamp: time.Now(),
	}

	for _, c := range clients {
		if !c.Filter().Matches(game) {
			continue
		}
		if !c.trySend(message) {
			// Buffer full means the subscriber stopped draining.
			h.log.Warn("client buffer full, disconnecting", "client_id", c.id)
			go h.Unregister(c)
		}
	}

	h.statsMu.Lock()
	h.gamesBroadcast++
	h.statsMu.Unlock()
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
