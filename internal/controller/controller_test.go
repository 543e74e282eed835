package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChatService struct{ mock.Mock }

func (m *mockChatService) Send(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*dto.SendMessageResponse)
	return res, args.Error(1)
}

func (m *mockChatService) Stream(ctx context.Context, sessionId, text string, onChunk llm.ChunkHandler) (string, error) {
	args := m.Called(sessionId, text)
	return args.String(0), args.Error(1)
}

func (m *mockChatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*dto.AskResponse)
	return res, args.Error(1)
}

func (m *mockChatService) ListSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	args := m.Called()
	res, _ := args.Get(0).([]*dto.SessionResponse)
	return res, args.Error(1)
}

func (m *mockChatService) History(ctx context.Context, sessionId string) ([]*dto.ChatMessageResponse, error) {
	args := m.Called(sessionId)
	res, _ := args.Get(0).([]*dto.ChatMessageResponse)
	return res, args.Error(1)
}

func (m *mockChatService) DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error) {
	args := m.Called(sessionId)
	res, _ := args.Get(0).(*dto.DeleteSessionResponse)
	return res, args.Error(1)
}

type mockDocumentService struct{ mock.Mock }

func (m *mockDocumentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*dto.IngestDocumentResponse)
	return res, args.Error(1)
}

func newApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return decode(t, app, req)
}

func decode(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestChatController_Send(t *testing.T) {
	svc := &mockChatService{}
	svc.On("Send", &dto.SendMessageRequest{SessionId: "s1", Message: "hello"}).
		Return(&dto.SendMessageResponse{SessionId: "s1", Answer: "hi"}, nil)
	app := newApp(NewChatController(svc).RegisterRoutes)

	code, body := doJSON(t, app, http.MethodPost, "/api/chat/v1/send", dto.SendMessageRequest{SessionId: "s1", Message: "hello"})

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "s1", data["session_id"])
	assert.Equal(t, "hi", data["answer"])
	svc.AssertExpectations(t)
}

func TestChatController_SendRejectsEmptyMessage(t *testing.T) {
	svc := &mockChatService{}
	app := newApp(NewChatController(svc).RegisterRoutes)

	code, body := doJSON(t, app, http.MethodPost, "/api/chat/v1/send", map[string]string{"session_id": "s1"})

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "message is required", body["message"])
	svc.AssertNotCalled(t, "Send", mock.Anything)
}

func TestChatController_Ask(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"answered", nil, fiber.StatusOK},
		{"model down", apperror.Upstream("chat", io.ErrUnexpectedEOF), fiber.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{}
			var res *dto.AskResponse
			if tt.err == nil {
				res = &dto.AskResponse{Query: "vacation days?", Answer: "20"}
			}
			svc.On("Ask", &dto.AskRequest{Query: "vacation days?"}).Return(res, tt.err)
			app := newApp(NewChatController(svc).RegisterRoutes)

			code, _ := doJSON(t, app, http.MethodPost, "/api/chat/v1/ask", dto.AskRequest{Query: "vacation days?"})
			assert.Equal(t, tt.status, code)
		})
	}
}

func TestChatController_Sessions(t *testing.T) {
	svc := &mockChatService{}
	svc.On("ListSessions").Return([]*dto.SessionResponse{{SessionId: "s1", Title: "Job hunting"}}, nil)
	svc.On("History", "s1").Return([]*dto.ChatMessageResponse{{Id: uuid.New(), Role: "user", Content: "hi"}}, nil)
	svc.On("DeleteSession", "s1").Return(&dto.DeleteSessionResponse{SessionId: "s1", Deleted: 2}, nil)
	svc.On("DeleteSession", "ghost").Return(nil, apperror.NotFound("session ghost has no messages"))
	app := newApp(NewChatController(svc).RegisterRoutes)

	code, body := doJSON(t, app, http.MethodGet, "/api/chat/v1/sessions", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, body = doJSON(t, app, http.MethodGet, "/api/chat/v1/sessions/s1/history", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, body = doJSON(t, app, http.MethodDelete, "/api/chat/v1/sessions/s1", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.EqualValues(t, 2, body["data"].(map[string]interface{})["deleted"])

	code, body = doJSON(t, app, http.MethodDelete, "/api/chat/v1/sessions/ghost", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "session ghost has no messages", body["message"])
}

func TestDocumentController_Ingest(t *testing.T) {
	svc := &mockDocumentService{}
	id := uuid.New()
	svc.On("Ingest", &dto.IngestDocumentRequest{Title: "Handbook", Content: "vacation policy"}).
		Return(&dto.IngestDocumentResponse{Id: id, Title: "Handbook", Status: "queued"}, nil)
	app := newApp(NewDocumentController(svc).RegisterRoutes)

	code, body := doJSON(t, app, http.MethodPost, "/api/document/v1", dto.IngestDocumentRequest{Title: "Handbook", Content: "vacation policy"})
	assert.Equal(t, fiber.StatusAccepted, code)
	assert.Equal(t, "queued", body["data"].(map[string]interface{})["status"])

	code, _ = doJSON(t, app, http.MethodPost, "/api/document/v1", map[string]string{"title": "Empty"})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestDocumentController_Upload(t *testing.T) {
	svc := &mockDocumentService{}
	svc.On("Ingest", &dto.IngestDocumentRequest{Title: "handbook", Content: "remote work policy", Source: "handbook.txt"}).
		Return(&dto.IngestDocumentResponse{Id: uuid.New(), Title: "handbook", Status: "queued"}, nil)
	app := newApp(NewDocumentController(svc).RegisterRoutes)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "handbook.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("remote work policy"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/document/v1/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	code, _ := decode(t, app, req)
	assert.Equal(t, fiber.StatusAccepted, code)
	svc.AssertExpectations(t)
}

func TestDocumentController_UploadRequiresFile(t *testing.T) {
	app := newApp(NewDocumentController(&mockDocumentService{}).RegisterRoutes)

	code, body := doJSON(t, app, http.MethodPost, "/api/document/v1/upload", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "file is required", body["message"])
}
