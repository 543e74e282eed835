package service

import (
	"context"
	"encoding/json"
	"time"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	chunkSize         int
	chunkOverlap      int
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	chunkSize, chunkOverlap int,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		logger:            logger,
	}
}

// Consume subscribes to the ingest topic and processes documents in the
// background until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retry a payload that cannot be read
		return
	}

	chunks, err := cs.embedDocument(ctx, payload)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to embed document", map[string]interface{}{
			"document_id": payload.DocumentId, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	if err := cs.replaceChunks(ctx, payload.DocumentId, chunks); err != nil {
		cs.logger.Error("Consumer", "Failed to store chunks", map[string]interface{}{
			"document_id": payload.DocumentId, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("Consumer", "Document ingested", map[string]interface{}{
		"document_id": payload.DocumentId, "chunks": len(chunks),
	})
	msg.Ack()
}

func (cs *consumerService) embedDocument(ctx context.Context, payload dto.PublishIngestDocumentMessage) ([]*entity.DocumentChunk, error) {
	texts := utils.SplitText(payload.Content, cs.chunkSize, cs.chunkOverlap)
	cs.logger.Debug("Consumer", "Content split", map[string]interface{}{
		"document_id": payload.DocumentId, "chunks": len(texts),
	})

	chunks := make([]*entity.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		res, err := cs.embeddingProvider.Generate(ctx, text, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: payload.DocumentId,
			ChunkIndex: i,
			Content:    text,
			Embedding:  res.Embedding.Values,
			Metadata: map[string]interface{}{
				"title":  payload.Title,
				"source": payload.Source,
			},
			CreatedAt: time.Now(),
		})
	}
	return chunks, nil
}

func (cs *consumerService) replaceChunks(ctx context.Context, documentId uuid.UUID, chunks []*entity.DocumentChunk) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().DeleteChunksByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if len(chunks) > 0 {
		if err := uow.DocumentRepository().CreateChunks(ctx, chunks); err != nil {
			return err
		}
	}
	return uow.Commit()
}
