package contract

import (
	"context"

	"clara-backend/internal/entity"
	"clara-backend/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk is a document chunk returned from a similarity query,
// annotated with the parent document name and the cosine similarity.
type ScoredChunk struct {
	Chunk        *entity.DocumentChunk
	DocumentName string
	Similarity   float64
}

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	// Delete removes the document; its chunks go with it via the FK cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	// SearchSimilar ranks chunks by cosine similarity against the query
	// vector: similarity strictly greater than threshold, descending order,
	// capped at limit. A nil ownerId skips the ownership filter.
	SearchSimilar(ctx context.Context, query []float32, threshold float64, limit int, ownerId *uuid.UUID) ([]*ScoredChunk, error)
}
