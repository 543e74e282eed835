package implementation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/mapper"
	"rag-chatbot-be/internal/model"
	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError("create chat message", err)
	}
	*message = *r.mapper.ChatMessageToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError("find chat message", err)
	}
	return r.mapper.ChatMessageToEntity(&m), nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError("list chat messages", err)
	}
	entities := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatMessageToEntity(m)
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError("count chat messages", err)
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) LockSession(ctx context.Context, sessionId string) error {
	err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", sessionId).Error
	return translateError("lock chat session", err)
}

func (r *ChatMessageRepositoryImpl) LatestCreatedAt(ctx context.Context, sessionId string) (*time.Time, error) {
	var latest sql.NullTime
	row := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Select("MAX(created_at)").
		Where("session_id = ?", sessionId).
		Row()
	if err := row.Scan(&latest); err != nil {
		return nil, translateError("latest chat message", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// ListSessions groups messages per session. The title comes from the single
// titled message of a session, falling back to the session id.
func (r *ChatMessageRepositoryImpl) ListSessions(ctx context.Context) ([]*entity.SessionSummary, error) {
	var rows []*model.SessionSummaryRow
	err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Select("session_id, COALESCE(MAX(title), session_id) AS title, MAX(created_at) AS last_activity").
		Group("session_id").
		Order("last_activity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("list chat sessions", err)
	}

	summaries := make([]*entity.SessionSummary, len(rows))
	for i, row := range rows {
		summaries[i] = r.mapper.SessionSummaryToEntity(row)
	}
	return summaries, nil
}

func (r *ChatMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChatMessage{})
	if res.Error != nil {
		return 0, translateError("delete chat session", res.Error)
	}
	return res.RowsAffected, nil
}
