package service

import (
	"context"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/pkg/events"
	pktNats "rag-chatbot-be/pkg/nats"
	"rag-chatbot-be/pkg/rag/orchestrator"
	"rag-chatbot-be/pkg/rag/workflow"
)

type IApplicationService interface {
	orchestrator.RecordStore
}

type applicationService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher pktNats.EventPublisher
	logger         logger.ILogger
}

// NewApplicationService builds the record store. eventPublisher may be nil.
func NewApplicationService(uowFactory unitofwork.RepositoryFactory, eventPublisher pktNats.EventPublisher, logger logger.ILogger) IApplicationService {
	return &applicationService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *applicationService) Get(ctx context.Context, sessionId string) (*entity.JobApplication, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	app, err := uow.JobApplicationRepository().FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("no application for session %s", sessionId)
	}
	return app, nil
}

func (s *applicationService) Upsert(ctx context.Context, application *entity.JobApplication) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.JobApplicationRepository().Upsert(ctx, application); err != nil {
		return err
	}

	s.publish(ctx, events.NewApplicationEvent(events.ApplicationConfirmed, application.SessionId, application.Fields()))
	return nil
}

func (s *applicationService) UpdateField(ctx context.Context, sessionId string, field workflow.Field, value string) error {
	if _, ok := workflow.ParseField(string(field)); !ok {
		return apperror.Validation("'%s' is not a valid field", field)
	}
	value, set := workflow.NormalizeValue(value)
	if !set {
		return apperror.Validation("%s cannot be empty", field.Prompt())
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.JobApplicationRepository().UpdateField(ctx, sessionId, string(field), value)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("no application for session %s", sessionId)
	}

	s.publish(ctx, events.NewApplicationEvent(events.ApplicationUpdated, sessionId, map[string]string{string(field): value}))
	return nil
}

func (s *applicationService) Delete(ctx context.Context, sessionId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.JobApplicationRepository().DeleteBySessionId(ctx, sessionId)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("no application for session %s", sessionId)
	}

	s.publish(ctx, events.NewApplicationEvent(events.ApplicationDeleted, sessionId, nil))
	return nil
}

// publish is best effort: the stored record is the source of truth.
func (s *applicationService) publish(ctx context.Context, evt events.BaseEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ApplicationService", "Failed to publish event", map[string]interface{}{
			"type": evt.Type, "error": err.Error(),
		})
	}
}
