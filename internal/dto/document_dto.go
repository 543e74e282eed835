package dto

import "github.com/google/uuid"

type IngestDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Source  string `json:"source" validate:"omitempty,max=255"`
}

type IngestDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
}

// PublishIngestDocumentMessage is the payload on the ingest topic.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Content    string    `json:"content"`
}
