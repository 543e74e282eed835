package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/serverutils"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SessionsAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/chat/v1/sessions":
			_ = json.NewEncoder(w).Encode(serverutils.SuccessResponse("ok", []*dto.SessionResponse{{SessionId: "s1", Title: "Job hunting"}}))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(serverutils.ErrorResponse(http.StatusNotFound, "session ghost has no messages"))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	sessions, err := c.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Job hunting", sessions[0].Title)

	_, err = c.DeleteSession(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ghost has no messages")
}

func TestClient_UploadSendsFileAndTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handbook.txt")
	require.NoError(t, os.WriteFile(path, []byte("vacation policy"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "handbook.txt", header.Filename)
		assert.Equal(t, "Handbook", r.FormValue("title"))

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(serverutils.SuccessResponse("queued", dto.IngestDocumentResponse{Title: "Handbook", Status: "queued"}))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Upload(context.Background(), path, "Handbook")
	require.NoError(t, err)
	assert.Equal(t, "queued", res.Status)
}

func TestConversation_SayCollectsChunks(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/v1/ws/cli-1", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, "s1|hello", string(data))

		for _, f := range []dto.StreamFrame{
			{Type: dto.StreamFrameChunk, Content: "Hi "},
			{Type: dto.StreamFrameChunk, Content: "there"},
			{Type: dto.StreamFrameDone, Content: "Hi there"},
		} {
			assert.NoError(t, conn.WriteJSON(f))
		}
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	conv, err := New(srv.URL).Dial(context.Background(), "cli-1")
	require.NoError(t, err)
	defer conv.Close()

	var seen []string
	reply, err := conv.Say("s1", "hello", func(chunk string) { seen = append(seen, chunk) })
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, "Hi there", strings.Join(seen, ""))
}
