package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const IngestStatusQueued = "queued"

type IDocumentService interface {
	// Ingest registers the document and queues it for chunking and embedding.
	// Ingesting an existing title replaces that document's chunks.
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService, logger logger.ILogger) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           logger,
	}
}

func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Content) == "" {
		return nil, apperror.Validation("document title and content are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByTitle{Title: title})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &entity.Document{
			Id:        uuid.New(),
			Title:     title,
			Source:    req.Source,
			CreatedAt: time.Now(),
		}
		if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{
		DocumentId: doc.Id,
		Title:      doc.Title,
		Source:     req.Source,
		Content:    req.Content,
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, apperror.Upstream("queue document", err)
	}

	s.logger.Info("DocumentService", "Document queued for ingestion", map[string]interface{}{
		"document_id": doc.Id, "title": doc.Title, "bytes": len(req.Content),
	})
	return &dto.IngestDocumentResponse{Id: doc.Id, Title: doc.Title, Status: IngestStatusQueued}, nil
}
