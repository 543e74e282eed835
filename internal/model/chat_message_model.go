package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string    `gorm:"type:varchar(255);not null;index:idx_chat_messages_session_created,priority:1"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	Title     *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index:idx_chat_messages_session_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// SessionSummaryRow is the projection scanned by the session directory query.
type SessionSummaryRow struct {
	SessionId    string
	Title        string
	LastActivity time.Time
}
