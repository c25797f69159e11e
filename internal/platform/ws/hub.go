// Package ws carries real-time chat traffic between patients and doctors.
// The hub tracks connections per user so a message reaches every device the
// recipient has open, and feeds the presence registry as connections come
// and go.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheSujay/Arogya-Backend/internal/platform/presence"
)

// Event is an outbound frame pushed to connected clients.
type Event struct {
	Type      string          `json:"type"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is an inbound frame from a connected client.
type ClientMessage struct {
	Action  string `json:"action"`
	To      string `json:"to"`
	Content string `json:"content"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single WebSocket connection owned by a user.
type Client struct {
	ConnID string
	UserID string
	Send   chan []byte
	conn   Conn
}

// Hub is the central connection manager. All operations are thread-safe via
// sync.RWMutex.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{} // user id -> set of clients
	registry presence.Registry
	logger   zerolog.Logger
}

// NewHub creates a Hub that reports connection state to the given registry.
func NewHub(registry presence.Registry, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		registry: registry,
		logger:   logger,
	}
}

// Register adds a connection for userID and records it in the presence
// registry.
func (h *Hub) Register(ctx context.Context, userID string, conn Conn) (*Client, error) {
	connID, err := h.registry.Connect(ctx, userID)
	if err != nil {
		return nil, err
	}

	client := &Client{
		ConnID: connID,
		UserID: userID,
		Send:   make(chan []byte, 256),
		conn:   conn,
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.mu.Unlock()

	return client, nil
}

// Unregister removes the connection, closes its Send channel, and clears it
// from the presence registry.
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.UserID]
	if ok {
		if _, present := set[client]; present {
			delete(set, client)
			close(client.Send)
			if len(set) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}
	h.mu.Unlock()

	if err := h.registry.Disconnect(ctx, client.ConnID); err != nil {
		h.logger.Error().Err(err).Str("conn_id", client.ConnID).Msg("presence disconnect failed")
	}
}

// SendToUser pushes an event to every open connection of userID. Returns
// true when at least one connection received it. Slow clients with full
// buffers are skipped rather than blocked on.
func (h *Hub) SendToUser(userID string, event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal event")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
			delivered = true
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
	return delivered
}

// ConnectionCount returns the number of open connections for userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
