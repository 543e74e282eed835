package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	SessionId string `json:"session_id" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"required,max=4000"`
}

type SendMessageResponse struct {
	SessionId string `json:"session_id"`
	Answer    string `json:"answer"`
}

type AskRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

type AskResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

type SessionResponse struct {
	SessionId    string    `json:"session_id"`
	Title        string    `json:"title"`
	LastActivity time.Time `json:"last_activity"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Title     *string   `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DeleteSessionResponse struct {
	SessionId string `json:"session_id"`
	Deleted   int64  `json:"deleted"`
}

// StreamFrame is one websocket reply frame.
type StreamFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const (
	StreamFrameChunk = "chunk"
	StreamFrameDone  = "done"
	StreamFrameError = "error"
)
