package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/pkg/llm"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// TurnStreamer runs one chat turn, delivering reply fragments as they arrive.
type TurnStreamer interface {
	Stream(ctx context.Context, sessionId, text string, onChunk llm.ChunkHandler) (string, error)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// ClientID is the path identifier; it doubles as the session id for
	// frames that do not name one.
	ClientID string

	// Buffered channel of outbound frames.
	Send chan []byte

	turns TurnStreamer
}

// ParseInbound splits a "session_id|text" frame. Frames without a separator
// belong to the client's own session.
func ParseInbound(clientID, data string) (sessionID, text string) {
	if sid, rest, ok := strings.Cut(data, "|"); ok && strings.TrimSpace(sid) != "" {
		return strings.TrimSpace(sid), rest
	}
	return clientID, data
}

func encodeFrame(kind, content string) []byte {
	b, _ := json.Marshal(dto.StreamFrame{Type: kind, Content: content})
	return b
}

// readPump handles inbound frames one at a time, so turns on one socket never overlap.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("ChatWS", "Unexpected close", map[string]interface{}{
					"client_id": c.ClientID, "error": err.Error(),
				})
			}
			return
		}
		c.handle(ctx, string(data))
	}
}

func (c *Client) handle(ctx context.Context, data string) {
	sessionID, text := ParseInbound(c.ClientID, data)

	answer, err := c.turns.Stream(ctx, sessionID, text, func(chunk string) error {
		c.Hub.Send(c.ClientID, encodeFrame(dto.StreamFrameChunk, chunk))
		return nil
	})
	if err != nil {
		c.Hub.logger.Error("ChatWS", "Turn failed", map[string]interface{}{
			"client_id": c.ClientID, "session_id": sessionID, "error": err.Error(),
		})
		c.Hub.Send(c.ClientID, encodeFrame(dto.StreamFrameError, "❌ Error: "+err.Error()))
		return
	}
	c.Hub.Send(c.ClientID, encodeFrame(dto.StreamFrameDone, answer))
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One frame per message: clients decode each as a JSON object.
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
