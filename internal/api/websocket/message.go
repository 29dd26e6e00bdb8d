package websocket

import (
	"strings"
	"time"

	"github.com/fortuna/ceres/internal/store"
)

// Frame types exchanged with subscribers.
const (
	MessageGame        = "game"
	MessageHeartbeat   = "heartbeat"
	MessageError       = "error"
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
)

// ServerMessage is the envelope for every outbound frame.
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is an inbound frame from a subscriber.
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ErrorPayload carries a machine-readable error to the subscriber.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Filter narrows the game feed to chosen season slices. Empty fields
// match everything.
type Filter struct {
	Years     []int    `json:"years,omitempty"`
	Genders   []string `json:"genders,omitempty"`
	Divisions []string `json:"divisions,omitempty"`
}

// Matches reports whether a landed game passes the filter.
func (f Filter) Matches(g *store.Game) bool {
	if g == nil {
		return false
	}
	if len(f.Years) > 0 && !containsInt(f.Years, g.Year) {
		return false
	}
	if len(f.Genders) > 0 && !containsFold(f.Genders, g.Gender) {
		return false
	}
	if len(f.Divisions) > 0 && !containsFold(f.Divisions, g.Division) {
		return false
	}
	return true
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
