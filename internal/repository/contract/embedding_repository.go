package contract

import (
	"context"

	"clara-backend/internal/entity"
	"clara-backend/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredEmbedding is a standalone embedding row annotated with the cosine
// similarity against a query vector.
type ScoredEmbedding struct {
	Embedding  *entity.Embedding
	Similarity float64
}

type EmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.Embedding) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SearchSimilar mirrors DocumentChunkRepository.SearchSimilar over the
	// standalone embeddings table.
	SearchSimilar(ctx context.Context, query []float32, threshold float64, limit int, ownerId *uuid.UUID) ([]*ScoredEmbedding, error)
}
