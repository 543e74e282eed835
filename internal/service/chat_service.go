package service

import (
	"context"
	"strings"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/workflow"

	"github.com/google/uuid"
)

// TurnHandler is the conversation core the transports drive.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, text string) (string, error)
	StreamTurn(ctx context.Context, sessionID, text string, onChunk llm.ChunkHandler) (string, error)
}

type QuestionAnswerer interface {
	Answer(ctx context.Context, query string, history []llm.Message) (string, error)
}

type IChatService interface {
	Send(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Stream(ctx context.Context, sessionId, text string, onChunk llm.ChunkHandler) (string, error)
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	ListSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	History(ctx context.Context, sessionId string) ([]*dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error)
}

type chatService struct {
	turns    TurnHandler
	answerer QuestionAnswerer
	messages IMessageService
	machine  *workflow.Machine
	logger   logger.ILogger
}

func NewChatService(
	turns TurnHandler,
	answerer QuestionAnswerer,
	messages IMessageService,
	machine *workflow.Machine,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		turns:    turns,
		answerer: answerer,
		messages: messages,
		machine:  machine,
		logger:   logger,
	}
}

func (s *chatService) Send(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	sessionId := strings.TrimSpace(req.SessionId)
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	answer, err := s.turns.HandleTurn(ctx, sessionId, req.Message)
	if err != nil {
		return nil, err
	}
	return &dto.SendMessageResponse{SessionId: sessionId, Answer: answer}, nil
}

func (s *chatService) Stream(ctx context.Context, sessionId, text string, onChunk llm.ChunkHandler) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperror.Validation("message is required")
	}
	return s.turns.StreamTurn(ctx, sessionId, text, onChunk)
}

func (s *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	answer, err := s.answerer.Answer(ctx, req.Query, nil)
	if err != nil {
		return nil, err
	}
	return &dto.AskResponse{Query: req.Query, Answer: answer}, nil
}

func (s *chatService) ListSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	sessions, err := s.messages.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, ss := range sessions {
		res = append(res, &dto.SessionResponse{
			SessionId:    ss.SessionId,
			Title:        ss.Title,
			LastActivity: ss.LastActivity,
		})
	}
	return res, nil
}

func (s *chatService) History(ctx context.Context, sessionId string) ([]*dto.ChatMessageResponse, error) {
	msgs, err := s.messages.List(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, toChatMessageResponse(m))
	}
	return res, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error) {
	s.machine.Discard(sessionId)

	n, err := s.messages.DeleteAll(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteSessionResponse{SessionId: sessionId, Deleted: n}, nil
}

func toChatMessageResponse(m *entity.ChatMessage) *dto.ChatMessageResponse {
	return &dto.ChatMessageResponse{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
	}
}
