package mapper

import (
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Title:     msg.Title,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Title:     msg.Title,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) SessionSummaryToEntity(row *model.SessionSummaryRow) *entity.SessionSummary {
	if row == nil {
		return nil
	}
	return &entity.SessionSummary{
		SessionId:    row.SessionId,
		Title:        row.Title,
		LastActivity: row.LastActivity,
	}
}
