package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Buffer size for outbound messages.
	sendBufferSize = 256
)

// Client is one subscriber connection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan ServerMessage
	hub  *Hub
	log  *logging.Logger

	filterMu sync.RWMutex
	filter   Filter

	connectedAt time.Time
}

func newClient(id string, conn *websocket.Conn, hub *Hub, log *logging.Logger) *Client {
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan ServerMessage, sendBufferSize),
		hub:         hub,
		log:         log,
		connectedAt: time.Now(),
	}
}

// readPump consumes subscriber frames until the connection drops.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("client closed unexpectedly", "client_id", c.id, "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

// writePump drains the send buffer to the peer and keeps the
// connection alive with pings.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Debug("client write failed", "client_id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message without blocking. False means the buffer is
// full and the subscriber is too slow.
func (c *Client) trySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) setFilter(f Filter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = f
}

// Filter returns the subscriber's current filter.
func (c *Client) Filter() Filter {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter
}

func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageSubscribe:
		c.handleSubscribe(msg.Payload)
	case MessageUnsubscribe:
		c.setFilter(Filter{})
		c.log.Debug("client unsubscribed", "client_id", c.id)
	case MessageHeartbeat:
		c.trySend(ServerMessage{
			Type:      MessageHeartbeat,
			Payload:   map[string]interface{}{"connected_at": c.connectedAt},
			Timestamp: time.Now(),
		})
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type)
	}
}

func (c *Client) handleSubscribe(payload map[string]interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	var filter Filter
	if err := json.Unmarshal(raw, &filter); err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	c.setFilter(filter)
	c.log.Debug("client subscribed",
		"client_id", c.id,
		"years", filter.Years,
		"genders", filter.Genders,
		"divisions", filter.Divisions)
}

func (c *Client) sendError(code, message string) {
	c.trySend(ServerMessage{
		Type:      MessageError,
		Payload:   ErrorPayload{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}
