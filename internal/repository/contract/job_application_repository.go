package contract

import (
	"context"

	"rag-chatbot-be/internal/entity"
)

type JobApplicationRepository interface {
	// FindBySessionId returns nil, nil when the session has no application.
	FindBySessionId(ctx context.Context, sessionId string) (*entity.JobApplication, error)
	Upsert(ctx context.Context, application *entity.JobApplication) error
	UpdateField(ctx context.Context, sessionId, column, value string) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId string) (int64, error)
}
