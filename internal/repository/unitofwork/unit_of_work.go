package unitofwork

import (
	"context"

	"rag-chatbot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatMessageRepository() contract.ChatMessageRepository
	JobApplicationRepository() contract.JobApplicationRepository
	DocumentRepository() contract.DocumentRepository
}
