package handler

import (
	"context"
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UserChecker reports whether a user exists
type UserChecker interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

// originPolicy is the set of browser origins allowed to open event streams.
// "*" allows any origin.
type originPolicy map[string]struct{}

func newOriginPolicy(origins []string) originPolicy {
	p := make(originPolicy, len(origins))
	for _, o := range origins {
		p[o] = struct{}{}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return true // non-browser client
	}
	if _, ok := p["*"]; ok {
		return true
	}
	_, ok := p[origin]
	return ok
}

// WebSocketHandler upgrades requests into per-user live event streams
type WebSocketHandler struct {
	hub      *websocket.Hub
	users    UserChecker
	origins  originPolicy
	upgrader ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, users UserChecker, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:     hub,
		users:   users,
		origins: newOriginPolicy(allowedOrigins),
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if h.origins.allows(origin) {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS godoc
// @Summary Open a live event stream
// @Description Upgrade to a WebSocket that pushes the user's transaction and budget events
// @Tags events
// @Param userId path int true "User ID"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /users/{userId}/ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to open event stream")
	}

	exists, err := h.users.UserExists(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to open event stream")
	}
	if !exists {
		return NewNotFoundError(c, "User not found")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the handshake
		log.Warn().Err(err).Int64("user_id", userID).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, userID, h.hub)
	h.hub.Register(client)
	log.Info().Int64("user_id", userID).Str("client_id", client.ID()).Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()
	return nil
}
