package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Id        uuid.UUID
	SessionId string
	Role      string
	Content   string
	Title     *string
	CreatedAt time.Time
}

// SessionSummary is one row of the session directory.
type SessionSummary struct {
	SessionId    string
	Title        string
	LastActivity time.Time
}
