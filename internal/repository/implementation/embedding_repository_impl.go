package implementation

import (
	"context"
	"errors"

	"clara-backend/internal/entity"
	"clara-backend/internal/mapper"
	"clara-backend/internal/model"
	"clara-backend/internal/repository/contract"
	"clara-backend/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type EmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmbeddingMapper
}

func NewEmbeddingRepository(db *gorm.DB) contract.EmbeddingRepository {
	return &EmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmbeddingMapper(),
	}
}

func (r *EmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.Embedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error) {
	var m model.Embedding
	query := applySpecifications(r.db.WithContext(ctx), specs)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	var models []*model.Embedding
	query := applySpecifications(r.db.WithContext(ctx), specs)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Embedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *EmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Embedding{}, id).Error
}

func (r *EmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, query []float32, threshold float64, limit int, ownerId *uuid.UUID) ([]*contract.ScoredEmbedding, error) {
	type row struct {
		model.Embedding
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(query)

	q := r.db.WithContext(ctx).
		Table("embeddings").
		Select("embeddings.*, 1 - (embedding <=> ?) AS similarity", queryVector).
		Where("1 - (embedding <=> ?) > ?", queryVector, threshold)

	if ownerId != nil {
		q = q.Where("user_id = ?", *ownerId)
	}

	if err := q.Order("similarity DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredEmbedding, len(rows))
	for i, res := range rows {
		scored[i] = &contract.ScoredEmbedding{
			Embedding:  r.mapper.ToEntity(&res.Embedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
