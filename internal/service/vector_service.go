package service

import (
	"context"
	"fmt"
	"time"

	"clara-backend/internal/apperror"
	"clara-backend/internal/config"
	"clara-backend/internal/dto"
	"clara-backend/internal/entity"
	"clara-backend/internal/pkg/logger"
	"clara-backend/internal/repository/specification"
	"clara-backend/internal/repository/unitofwork"
	"clara-backend/pkg/embedding"
	"clara-backend/pkg/events"
	"clara-backend/pkg/utils"

	"github.com/google/uuid"
)

type IVectorService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	AddDocument(ctx context.Context, userId uuid.UUID, req *dto.AddDocumentRequest) (*dto.DocumentResponse, error)
	AddLargeDocument(ctx context.Context, userId uuid.UUID, req *dto.AddLargeDocumentRequest) (*dto.AddLargeDocumentResponse, error)
	Search(ctx context.Context, ownerId *uuid.UUID, req *dto.SearchRequest) ([]*dto.SearchResult, error)
	SearchChunks(ctx context.Context, ownerId *uuid.UUID, req *dto.SearchRequest) ([]*dto.SearchResult, error)
	ListDocuments(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, userId, documentId uuid.UUID) error
	DeleteLargeDocument(ctx context.Context, userId, documentId uuid.UUID) error
}

type vectorService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *embedding.Registry
	cfg        config.AIConfig
	log        logger.ILogger
	publisher  EventPublisher
}

func NewVectorService(
	uowFactory unitofwork.RepositoryFactory,
	registry *embedding.Registry,
	cfg config.AIConfig,
	log logger.ILogger,
	publisher EventPublisher,
) IVectorService {
	return &vectorService{
		uowFactory: uowFactory,
		registry:   registry,
		cfg:        cfg,
		log:        log,
		publisher:  publisher,
	}
}

// embed wraps the provider call and reports which model produced the
// vector; any failure there is an upstream failure, surfaced immediately
// without internal retries.
func (s *vectorService) embed(ctx context.Context, text string) ([]float32, string, error) {
	provider, err := s.registry.Default()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperror.ErrUpstream, err)
	}
	vector, err := provider.Generate(ctx, text)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperror.ErrUpstream, err)
	}
	return vector, provider.Model(), nil
}

func (s *vectorService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", apperror.ErrValidation)
	}
	vector, _, err := s.embed(ctx, text)
	return vector, err
}

func (s *vectorService) AddDocument(ctx context.Context, userId uuid.UUID, req *dto.AddDocumentRequest) (*dto.DocumentResponse, error) {
	vector, modelName, err := s.embed(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	record := &entity.Embedding{
		Id:        uuid.New(),
		UserId:    userId,
		Content:   req.Content,
		Embedding: vector,
		Model:     modelName,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if record.Metadata == nil {
		record.Metadata = map[string]interface{}{}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.EmbeddingRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	return &dto.DocumentResponse{
		Id:        record.Id,
		Content:   record.Content,
		Metadata:  record.Metadata,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func (s *vectorService) AddLargeDocument(ctx context.Context, userId uuid.UUID, req *dto.AddLargeDocumentRequest) (*dto.AddLargeDocumentResponse, error) {
	if s.cfg.ChunkOverlap >= s.cfg.ChunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be smaller than chunk size", apperror.ErrValidation)
	}

	document := &entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      req.Name,
		Type:      req.Type,
		Size:      len(req.Content),
		Content:   req.Content,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if document.Metadata == nil {
		document.Metadata = map[string]interface{}{}
	}

	chunks := utils.ChunkText(req.Content, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	s.log.Info("vector", "chunked document for ingestion", map[string]interface{}{
		"document_id": document.Id.String(),
		"chunks":      len(chunks),
	})

	// All provider calls happen before the transaction opens; no lock is
	// held across external I/O.
	chunkRecords := make([]*entity.DocumentChunk, 0, len(chunks))
	for i, chunk := range chunks {
		vector, _, err := s.embed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		chunkRecords = append(chunkRecords, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  vector,
			Metadata:   map[string]interface{}{"chunk_index": i},
			CreatedAt:  time.Now(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunkRecords); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := events.BaseEvent{
			Type: events.TypeDocumentIngested,
			Data: map[string]interface{}{
				"document_id": document.Id.String(),
				"user_id":     userId.String(),
				"chunks":      len(chunkRecords),
			},
			OccurredAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn("vector", "failed to publish event", map[string]interface{}{
				"event": events.TypeDocumentIngested,
				"error": err.Error(),
			})
		}
	}

	return &dto.AddLargeDocumentResponse{Id: document.Id}, nil
}

// validateSearch normalizes limit and threshold. An explicit threshold of 0
// is honored; the 0.8 default applies only when the field was absent.
func validateSearch(req *dto.SearchRequest) (float64, error) {
	if req.Limit <= 0 {
		req.Limit = 5
	}
	threshold := 0.8
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return 0, fmt.Errorf("%w: threshold must be within [0, 1]", apperror.ErrValidation)
	}
	return threshold, nil
}

func (s *vectorService) Search(ctx context.Context, ownerId *uuid.UUID, req *dto.SearchRequest) ([]*dto.SearchResult, error) {
	threshold, err := validateSearch(req)
	if err != nil {
		return nil, err
	}

	queryVector, _, err := s.embed(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.EmbeddingRepository().SearchSimilar(ctx, queryVector, threshold, req.Limit, ownerId)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SearchResult, len(scored))
	for i, item := range scored {
		results[i] = &dto.SearchResult{
			Id:       item.Embedding.Id,
			Content:  item.Embedding.Content,
			Metadata: item.Embedding.Metadata,
			Distance: 1 - item.Similarity,
		}
	}
	return results, nil
}

func (s *vectorService) SearchChunks(ctx context.Context, ownerId *uuid.UUID, req *dto.SearchRequest) ([]*dto.SearchResult, error) {
	threshold, err := validateSearch(req)
	if err != nil {
		return nil, err
	}

	queryVector, _, err := s.embed(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilar(ctx, queryVector, threshold, req.Limit, ownerId)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SearchResult, len(scored))
	for i, item := range scored {
		results[i] = &dto.SearchResult{
			Id:           item.Chunk.Id,
			Content:      item.Chunk.Content,
			Metadata:     item.Chunk.Metadata,
			Distance:     1 - item.Similarity,
			DocumentName: item.DocumentName,
		}
	}
	return results, nil
}

func (s *vectorService) ListDocuments(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.EmbeddingRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentResponse, len(records))
	for i, record := range records {
		responses[i] = &dto.DocumentResponse{
			Id:        record.Id,
			Content:   record.Content,
			Metadata:  record.Metadata,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}
	}
	return responses, nil
}

func (s *vectorService) DeleteDocument(ctx context.Context, userId, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.EmbeddingRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if record == nil {
		return apperror.ErrNotFound
	}
	return uow.EmbeddingRepository().Delete(ctx, record.Id)
}

func (s *vectorService) DeleteLargeDocument(ctx context.Context, userId, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return apperror.ErrNotFound
	}
	// Chunks go with the document via the FK cascade.
	return uow.DocumentRepository().Delete(ctx, document.Id)
}
