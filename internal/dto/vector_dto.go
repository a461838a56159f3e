package dto

import (
	"time"

	"github.com/google/uuid"
)

type EmbedRequest struct {
	Text string `json:"text" validate:"required"`
}

type EmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type AddDocumentRequest struct {
	Content  string                 `json:"content" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AddLargeDocumentRequest struct {
	Name     string                 `json:"name" validate:"required"`
	Content  string                 `json:"content" validate:"required"`
	Type     string                 `json:"type" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AddLargeDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

// SearchRequest's Threshold is a pointer so an explicit 0 survives parsing;
// only an absent field falls back to the default.
type SearchRequest struct {
	Query     string   `json:"query" validate:"required"`
	Limit     int      `json:"limit"`
	Threshold *float64 `json:"threshold"`
}

type SearchResult struct {
	Id           uuid.UUID              `json:"id"`
	Content      string                 `json:"content"`
	Metadata     map[string]interface{} `json:"metadata"`
	Distance     float64                `json:"distance"`
	DocumentName string                 `json:"document_name,omitempty"`
}

type DocumentResponse struct {
	Id        uuid.UUID              `json:"id"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
