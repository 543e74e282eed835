package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/pkg/rag/session"

	"github.com/google/uuid"
)

type IMessageService interface {
	// Append stores one message. A title is kept only on the first user
	// message of a session.
	Append(ctx context.Context, sessionId, role, content string, title *string) (*entity.ChatMessage, error)
	List(ctx context.Context, sessionId string) ([]*entity.ChatMessage, error)
	ListRecent(ctx context.Context, sessionId string, limit int) ([]*entity.ChatMessage, error)
	ListSessions(ctx context.Context) ([]*entity.SessionSummary, error)
	// DeleteAll fails with apperror.ErrNotFound when the session has no messages.
	DeleteAll(ctx context.Context, sessionId string) (int64, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	directory  *session.Directory
	logger     logger.ILogger
	now        func() time.Time
}

func NewMessageService(uowFactory unitofwork.RepositoryFactory, directory *session.Directory, logger logger.ILogger) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		directory:  directory,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *messageService) Append(ctx context.Context, sessionId, role, content string, title *string) (*entity.ChatMessage, error) {
	if strings.TrimSpace(sessionId) == "" {
		return nil, apperror.Validation("session id is required")
	}
	if role != entity.RoleUser && role != entity.RoleAssistant {
		return nil, apperror.Validation("unknown role %q", role)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Upstream("begin transaction", err)
	}
	defer uow.Rollback()

	repo := uow.ChatMessageRepository()
	if err := repo.LockSession(ctx, sessionId); err != nil {
		return nil, err
	}

	latest, err := repo.LatestCreatedAt(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	// Postgres keeps microseconds; two appends in the same microsecond must
	// still sort in insertion order.
	createdAt := s.now().UTC().Truncate(time.Microsecond)
	if latest != nil && !createdAt.After(*latest) {
		createdAt = latest.Add(time.Microsecond)
	}

	if title != nil && (role != entity.RoleUser || latest != nil || strings.TrimSpace(*title) == "") {
		title = nil
	}

	msg := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
		Title:     title,
		CreatedAt: createdAt,
	}
	if err := repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Upstream("commit message", err)
	}

	s.directory.Invalidate(ctx)
	return msg, nil
}

func (s *messageService) List(ctx context.Context, sessionId string) ([]*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Column: "created_at"},
	)
}

func (s *messageService) ListRecent(ctx context.Context, sessionId string, limit int) ([]*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Column: "created_at", Desc: true},
		specification.Limit{N: limit},
	)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *messageService) ListSessions(ctx context.Context) ([]*entity.SessionSummary, error) {
	return s.directory.List(ctx)
}

func (s *messageService) DeleteAll(ctx context.Context, sessionId string) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId)
	if err != nil {
		return 0, fmt.Errorf("delete session %s: %w", sessionId, err)
	}
	if n == 0 {
		return 0, apperror.NotFound("session %s has no messages", sessionId)
	}

	s.directory.Invalidate(ctx)
	s.logger.Info("MessageService", "Session history deleted", map[string]interface{}{
		"session_id": sessionId, "deleted": n,
	})
	return n, nil
}
