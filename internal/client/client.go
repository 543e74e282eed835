// Package client talks to the chatbot REST and websocket endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/serverutils"

	"github.com/gorilla/websocket"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, CHAT_SERVER_URL is used, falling
// back to localhost:3000.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("CHAT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func do[T any](ctx context.Context, c *Client, method, path, contentType string, body io.Reader) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var envelope serverutils.Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success {
		return zero, fmt.Errorf("server error %d: %s", envelope.Code, envelope.Message)
	}
	return envelope.Data, nil
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	if payload == nil {
		return do[T](ctx, c, method, path, "", nil)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("marshal request: %w", err)
	}
	return do[T](ctx, c, method, path, "application/json", bytes.NewReader(raw))
}

func (c *Client) Send(ctx context.Context, sessionID, message string) (*dto.SendMessageResponse, error) {
	return doJSON[*dto.SendMessageResponse](ctx, c, http.MethodPost, "/api/chat/v1/send",
		dto.SendMessageRequest{SessionId: sessionID, Message: message})
}

func (c *Client) Ask(ctx context.Context, query string) (*dto.AskResponse, error) {
	return doJSON[*dto.AskResponse](ctx, c, http.MethodPost, "/api/chat/v1/ask", dto.AskRequest{Query: query})
}

func (c *Client) Sessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	return doJSON[[]*dto.SessionResponse](ctx, c, http.MethodGet, "/api/chat/v1/sessions", nil)
}

func (c *Client) History(ctx context.Context, sessionID string) ([]*dto.ChatMessageResponse, error) {
	return doJSON[[]*dto.ChatMessageResponse](ctx, c, http.MethodGet,
		"/api/chat/v1/sessions/"+url.PathEscape(sessionID)+"/history", nil)
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) (*dto.DeleteSessionResponse, error) {
	return doJSON[*dto.DeleteSessionResponse](ctx, c, http.MethodDelete,
		"/api/chat/v1/sessions/"+url.PathEscape(sessionID), nil)
}

// Upload sends a text file for ingestion. An empty title lets the server
// derive one from the file name.
func (c *Client) Upload(ctx context.Context, path, title string) (*dto.IngestDocumentResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if title != "" {
		if err := w.WriteField("title", title); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return do[*dto.IngestDocumentResponse](ctx, c, http.MethodPost, "/api/document/v1/upload", w.FormDataContentType(), &buf)
}

// Conversation is an open chat socket.
type Conversation struct {
	conn *websocket.Conn
}

// Dial opens the chat socket for clientID.
func (c *Client) Dial(ctx context.Context, clientID string) (*Conversation, error) {
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL+"/api/chat/v1/ws/"+url.PathEscape(clientID), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}
	return &Conversation{conn: conn}, nil
}

// Say sends one message and calls onChunk for every reply fragment until the
// server marks the turn done. The full reply is returned.
func (cv *Conversation) Say(sessionID, text string, onChunk func(string)) (string, error) {
	if err := cv.conn.WriteMessage(websocket.TextMessage, []byte(sessionID+"|"+text)); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	var full strings.Builder
	for {
		var frame dto.StreamFrame
		if err := cv.conn.ReadJSON(&frame); err != nil {
			return full.String(), fmt.Errorf("read frame: %w", err)
		}
		switch frame.Type {
		case dto.StreamFrameChunk:
			full.WriteString(frame.Content)
			if onChunk != nil {
				onChunk(frame.Content)
			}
		case dto.StreamFrameDone:
			if frame.Content != "" {
				return frame.Content, nil
			}
			return full.String(), nil
		case dto.StreamFrameError:
			return full.String(), fmt.Errorf("%s", frame.Content)
		}
	}
}

func (cv *Conversation) Close() error {
	_ = cv.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return cv.conn.Close()
}
