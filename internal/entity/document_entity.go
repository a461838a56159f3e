package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a chunked upload. Its chunks carry the vectors; the document
// row keeps the full content and file metadata.
type Document struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Type      string
	Size      int
	Content   string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentChunk holds one embedded segment of its parent document.
// ChunkIndex is contiguous from 0 in insertion order.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  []float32
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

// Embedding is a standalone (non-chunked) content record with its own vector.
type Embedding struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Content   string
	Embedding []float32
	Model     string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}
