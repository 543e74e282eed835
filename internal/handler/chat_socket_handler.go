package handler

import (
	"context"
	"strings"

	"rag-chatbot-be/internal/pkg/logger"
	internalWS "rag-chatbot-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatSocketHandler struct {
	turns  internalWS.TurnStreamer
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatSocketHandler(turns internalWS.TurnStreamer, hub *internalWS.Hub, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		turns:  turns,
		hub:    hub,
		logger: log,
	}
}

func (h *ChatSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/ws/:client_id", h.ServeWs)
}

// ServeWs upgrades the request and serves chat turns on the socket.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	clientID := strings.TrimSpace(c.Params("client_id"))
	if clientID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "client_id is required")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatWS", "Starting WebSocket session", map[string]interface{}{"client_id": clientID})
			internalWS.ServeWs(context.Background(), h.hub, conn, clientID, h.turns)
			h.logger.Info("ChatWS", "WebSocket session ended", map[string]interface{}{"client_id": clientID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
