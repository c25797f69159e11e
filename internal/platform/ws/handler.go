package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer.
	},
}

// InboundHandler receives chat messages read off a client socket. The
// messaging service implements it; the hub stays transport-only.
type InboundHandler interface {
	HandleInbound(senderID uuid.UUID, senderRole string, msg ClientMessage)
}

// Handler upgrades authenticated HTTP requests to WebSocket connections.
type Handler struct {
	hub     *Hub
	inbound InboundHandler
}

func NewHandler(hub *Hub, inbound InboundHandler) *Handler {
	return &Handler{hub: hub, inbound: inbound}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades the connection, registers the client with the hub,
// and starts read/write pumps.
func (h *Handler) HandleConnect(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	role := auth.RoleFromContext(ctx)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client, err := h.hub.Register(ctx, userID.String(), &gorillaConnAdapter{conn})
	if err != nil {
		conn.Close()
		return echo.NewHTTPError(http.StatusServiceUnavailable, "presence registry unavailable")
	}

	go h.writePump(client)
	go h.readPump(client, userID, role)

	return nil
}

func (h *Handler) readPump(client *Client, userID uuid.UUID, role string) {
	// The request context dies with the HTTP handler; use a fresh one for
	// the disconnect bookkeeping.
	defer func() {
		h.hub.Unregister(context.Background(), client)
		client.conn.Close()
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue // Ignore malformed messages.
		}

		if h.inbound != nil {
			h.inbound.HandleInbound(userID, role, msg)
		}
	}
}

func (h *Handler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
