package contract

import (
	"context"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// LockSession serializes writers of one session until the surrounding transaction ends.
	LockSession(ctx context.Context, sessionId string) error
	LatestCreatedAt(ctx context.Context, sessionId string) (*time.Time, error)
	ListSessions(ctx context.Context) ([]*entity.SessionSummary, error)
	DeleteBySessionId(ctx context.Context, sessionId string) (int64, error)
}
