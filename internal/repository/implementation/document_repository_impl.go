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

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := applySpecifications(r.db.WithContext(ctx), specs)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := applySpecifications(r.db.WithContext(ctx), specs)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Document, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := applySpecifications(r.db.WithContext(ctx), specs)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DocumentChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// SearchSimilar delegates the scan to pgvector's cosine operator. The
// contract matches pkg/similarity.Rank: similarity = 1 - (embedding <=> q),
// strictly above threshold, descending, capped at limit.
func (r *DocumentChunkRepositoryImpl) SearchSimilar(ctx context.Context, query []float32, threshold float64, limit int, ownerId *uuid.UUID) ([]*contract.ScoredChunk, error) {
	type row struct {
		model.DocumentChunk
		DocumentName string
		Similarity   float64
	}
	var rows []row

	queryVector := pgvector.NewVector(query)

	q := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, documents.name AS document_name, 1 - (document_chunks.embedding <=> ?) AS similarity", queryVector).
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("1 - (document_chunks.embedding <=> ?) > ?", queryVector, threshold)

	if ownerId != nil {
		q = q.Where("documents.user_id = ?", *ownerId)
	}

	if err := q.Order("similarity DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(rows))
	for i, res := range rows {
		scored[i] = &contract.ScoredChunk{
			Chunk:        r.mapper.ToEntity(&res.DocumentChunk),
			DocumentName: res.DocumentName,
			Similarity:   res.Similarity,
		}
	}
	return scored, nil
}
