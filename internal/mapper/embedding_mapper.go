package mapper

import (
	"clara-backend/internal/entity"
	"clara-backend/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type EmbeddingMapper struct{}

func NewEmbeddingMapper() *EmbeddingMapper {
	return &EmbeddingMapper{}
}

func (m *EmbeddingMapper) ToEntity(e *model.Embedding) *entity.Embedding {
	if e == nil {
		return nil
	}
	return &entity.Embedding{
		Id:        e.Id,
		UserId:    e.UserId,
		Content:   e.Content,
		Embedding: e.Embedding.Slice(),
		Model:     e.Model,
		Metadata:  map[string]interface{}(e.Metadata),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *EmbeddingMapper) ToModel(e *entity.Embedding) *model.Embedding {
	if e == nil {
		return nil
	}
	return &model.Embedding{
		Id:        e.Id,
		UserId:    e.UserId,
		Content:   e.Content,
		Embedding: pgvector.NewVector(e.Embedding),
		Model:     e.Model,
		Metadata:  datatypes.JSONMap(e.Metadata),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
