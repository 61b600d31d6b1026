package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when sending to a closed or stalled connection
var ErrClientClosed = errors.New("client is closed")

// Conn is one subscriber held by the hub
type Conn interface {
	ID() string
	UserID() int64
	Send(data []byte) error
	Close() error
}

// Hub routes events to the connections of each user. A user may hold
// several connections at once. Safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[string]Conn
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[string]Conn)}
}

// Register subscribes conn to its user's events
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	byID, ok := h.conns[conn.UserID()]
	if !ok {
		byID = make(map[string]Conn)
		h.conns[conn.UserID()] = byID
	}
	byID[conn.ID()] = conn
	h.mu.Unlock()

	log.Debug().Int64("user_id", conn.UserID()).Str("client_id", conn.ID()).Msg("WebSocket client registered")
}

// Unregister drops conn. Unknown connections are ignored.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byID := h.conns[conn.UserID()]
	if _, ok := byID[conn.ID()]; !ok {
		return
	}
	delete(byID, conn.ID())
	if len(byID) == 0 {
		delete(h.conns, conn.UserID())
	}

	log.Debug().Int64("user_id", conn.UserID()).Str("client_id", conn.ID()).Msg("WebSocket client unregistered")
}

// Publish encodes event once and queues it on every connection of the user.
// Delivery is best effort: a failed send is logged and skipped.
func (h *Hub) Publish(userID int64, event Event) {
	targets := h.connsOf(userID)
	if len(targets) == 0 {
		return
	}

	data, err := event.Encode()
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Str("event_type", event.Type).Msg("Failed to encode event")
		return
	}

	for _, conn := range targets {
		if err := conn.Send(data); err != nil {
			log.Warn().
				Err(err).
				Int64("user_id", userID).
				Str("client_id", conn.ID()).
				Msg("Failed to send to client")
		}
	}

	log.Debug().
		Int64("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Published event")
}

// CloseAll disconnects and forgets every connection
func (h *Hub) CloseAll() {
	h.mu.Lock()
	old := h.conns
	h.conns = make(map[int64]map[string]Conn)
	h.mu.Unlock()

	for _, byID := range old {
		for _, conn := range byID {
			if err := conn.Close(); err != nil {
				log.Debug().Err(err).Str("client_id", conn.ID()).Msg("Error closing client")
			}
		}
	}
}

// ClientCount returns the number of connections a user holds
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// TotalClientCount returns the number of connections across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, byID := range h.conns {
		n += len(byID)
	}
	return n
}

func (h *Hub) connsOf(userID int64) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Conn, 0, len(h.conns[userID]))
	for _, conn := range h.conns[userID] {
		out = append(out, conn)
	}
	return out
}
