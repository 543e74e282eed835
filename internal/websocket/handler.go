package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs a chat socket until the peer disconnects.
func ServeWs(ctx context.Context, hub *Hub, c *websocket.Conn, clientID string, turns TurnStreamer) {
	client := &Client{Hub: hub, Conn: c, ClientID: clientID, Send: make(chan []byte, 256), turns: turns}
	client.Hub.register <- client

	go client.writePump()
	client.readPump(ctx)
}
