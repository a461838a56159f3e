package service

import (
	"context"
	"time"

	"clara-backend/internal/apperror"
	"clara-backend/internal/entity"
	"clara-backend/internal/repository/contract"
	"clara-backend/internal/repository/specification"
	"clara-backend/internal/repository/unitofwork"
	"clara-backend/pkg/events"
	"clara-backend/pkg/similarity"

	"github.com/google/uuid"
)

// fakeStore is shared, mutable state behind the fake repositories. Begin
// snapshots it so Rollback can restore the pre-transaction view.
type fakeStore struct {
	users         []*entity.User
	sessions      []*entity.Session
	refreshTokens []*entity.RefreshToken
	documents     []*entity.Document
	chunks        []*entity.DocumentChunk
	embeddings    []*entity.Embedding
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{}
	c.users = append(c.users, s.users...)
	c.sessions = append(c.sessions, s.sessions...)
	c.refreshTokens = append(c.refreshTokens, s.refreshTokens...)
	c.documents = append(c.documents, s.documents...)
	c.chunks = append(c.chunks, s.chunks...)
	c.embeddings = append(c.embeddings, s.embeddings...)
	return c
}

type fakeFactory struct {
	store *fakeStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{store: &fakeStore{}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct {
	store    *fakeStore
	snapshot *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.snapshot = u.store.clone()
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.snapshot = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if u.snapshot != nil {
		*u.store = *u.snapshot
		u.snapshot = nil
	}
	return nil
}

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepository{store: u.store}
}

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository {
	return &fakeSessionRepository{store: u.store}
}

func (u *fakeUnitOfWork) RefreshTokenRepository() contract.RefreshTokenRepository {
	return &fakeRefreshTokenRepository{store: u.store}
}

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepository{store: u.store}
}

func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &fakeDocumentChunkRepository{store: u.store}
}

func (u *fakeUnitOfWork) EmbeddingRepository() contract.EmbeddingRepository {
	return &fakeEmbeddingRepository{store: u.store}
}

// tokenRow is the common shape a row reduces to for specification matching.
type tokenRow struct {
	id        uuid.UUID
	userId    uuid.UUID
	email     string
	token     string
	expiresAt time.Time
}

func matches(row tokenRow, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if row.id != s.ID {
				return false
			}
		case specification.ByEmail:
			if row.email != s.Email {
				return false
			}
		case specification.ByToken:
			if row.token != s.Token {
				return false
			}
		case specification.NotExpired:
			if !row.expiresAt.After(s.Now) {
				return false
			}
		case specification.OwnedByUser:
			if row.userId != s.UserID {
				return false
			}
		case specification.OrderBy, specification.Pagination:
			// Ordering is not significant for these fakes.
		}
	}
	return true
}

type fakeUserRepository struct {
	store *fakeStore
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return apperror.ErrAlreadyExists
		}
	}
	r.store.users = append(r.store.users, user)
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, user := range r.store.users {
		if matches(tokenRow{id: user.Id, email: user.Email}, specs) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, user := range r.store.users {
		if user.Id == id {
			r.store.users = append(r.store.users[:i], r.store.users[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSessionRepository struct {
	store *fakeStore
}

func (r *fakeSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	r.store.sessions = append(r.store.sessions, session)
	return nil
}

func (r *fakeSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	for _, session := range r.store.sessions {
		row := tokenRow{id: session.Id, userId: session.UserId, token: session.Token, expiresAt: session.ExpiresAt}
		if matches(row, specs) {
			return session, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, session := range r.store.sessions {
		if session.Id == id {
			r.store.sessions = append(r.store.sessions[:i], r.store.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	for i, session := range r.store.sessions {
		if session.Token == token {
			r.store.sessions = append(r.store.sessions[:i], r.store.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeRefreshTokenRepository struct {
	store *fakeStore
}

func (r *fakeRefreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	r.store.refreshTokens = append(r.store.refreshTokens, token)
	return nil
}

func (r *fakeRefreshTokenRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefreshToken, error) {
	for _, stored := range r.store.refreshTokens {
		row := tokenRow{id: stored.Id, userId: stored.UserId, token: stored.Token, expiresAt: stored.ExpiresAt}
		if matches(row, specs) {
			return stored, nil
		}
	}
	return nil, nil
}

func (r *fakeRefreshTokenRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	for i, stored := range r.store.refreshTokens {
		if stored.Id == id {
			r.store.refreshTokens = append(r.store.refreshTokens[:i], r.store.refreshTokens[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeDocumentRepository struct {
	store *fakeStore
}

func (r *fakeDocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.store.documents = append(r.store.documents, document)
	return nil
}

func (r *fakeDocumentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, document := range r.store.documents {
		if matches(tokenRow{id: document.Id, userId: document.UserId}, specs) {
			return document, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, document := range r.store.documents {
		if matches(tokenRow{id: document.Id, userId: document.UserId}, specs) {
			out = append(out, document)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, document := range r.store.documents {
		if document.Id == id {
			r.store.documents = append(r.store.documents[:i], r.store.documents[i+1:]...)
			break
		}
	}
	// FK cascade
	var kept []*entity.DocumentChunk
	for _, chunk := range r.store.chunks {
		if chunk.DocumentId != id {
			kept = append(kept, chunk)
		}
	}
	r.store.chunks = kept
	return nil
}

type fakeDocumentChunkRepository struct {
	store *fakeStore
}

func (r *fakeDocumentChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.store.chunks = append(r.store.chunks, chunks...)
	return nil
}

func (r *fakeDocumentChunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var out []*entity.DocumentChunk
	for _, chunk := range r.store.chunks {
		if matches(tokenRow{id: chunk.Id}, specs) {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (r *fakeDocumentChunkRepository) SearchSimilar(ctx context.Context, query []float32, threshold float64, limit int, ownerId *uuid.UUID) ([]*contract.ScoredChunk, error) {
	names := map[uuid.UUID]string{}
	owners := map[uuid.UUID]uuid.UUID{}
	for _, document := range r.store.documents {
		names[document.Id] = document.Name
		owners[document.Id] = document.UserId
	}

	candidates := make([]similarity.Candidate, 0, len(r.store.chunks))
	byId := map[uuid.UUID]*entity.DocumentChunk{}
	for _, chunk := range r.store.chunks {
		if ownerId != nil && owners[chunk.DocumentId] != *ownerId {
			continue
		}
		byId[chunk.Id] = chunk
		candidates = append(candidates, similarity.Candidate{
			Id:       chunk.Id,
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			Vector:   chunk.Embedding,
		})
	}

	scored := similarity.Rank(query, candidates, threshold, limit)
	out := make([]*contract.ScoredChunk, len(scored))
	for i, item := range scored {
		chunk := byId[item.Id]
		out[i] = &contract.ScoredChunk{
			Chunk:        chunk,
			DocumentName: names[chunk.DocumentId],
			Similarity:   item.Similarity,
		}
	}
	return out, nil
}

type fakeEmbeddingRepository struct {
	store *fakeStore
}

func (r *fakeEmbeddingRepository) Create(ctx context.Context, embedding *entity.Embedding) error {
	r.store.embeddings = append(r.store.embeddings, embedding)
	return nil
}

func (r *fakeEmbeddingRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error) {
	for _, record := range r.store.embeddings {
		if matches(tokenRow{id: record.Id, userId: record.UserId}, specs) {
			return record, nil
		}
	}
	return nil, nil
}

func (r *fakeEmbeddingRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	var out []*entity.Embedding
	for _, record := range r.store.embeddings {
		if matches(tokenRow{id: record.Id, userId: record.UserId}, specs) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeEmbeddingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, record := range r.store.embeddings {
		if record.Id == id {
			r.store.embeddings = append(r.store.embeddings[:i], r.store.embeddings[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeEmbeddingRepository) SearchSimilar(ctx context.Context, query []float32, threshold float64, limit int, ownerId *uuid.UUID) ([]*contract.ScoredEmbedding, error) {
	candidates := make([]similarity.Candidate, 0, len(r.store.embeddings))
	byId := map[uuid.UUID]*entity.Embedding{}
	for _, record := range r.store.embeddings {
		if ownerId != nil && record.UserId != *ownerId {
			continue
		}
		byId[record.Id] = record
		candidates = append(candidates, similarity.Candidate{
			Id:       record.Id,
			Content:  record.Content,
			Metadata: record.Metadata,
			Vector:   record.Embedding,
		})
	}

	scored := similarity.Rank(query, candidates, threshold, limit)
	out := make([]*contract.ScoredEmbedding, len(scored))
	for i, item := range scored {
		out[i] = &contract.ScoredEmbedding{
			Embedding:  byId[item.Id],
			Similarity: item.Similarity,
		}
	}
	return out, nil
}

// nopLogger satisfies logger.ILogger without output.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// recordingPublisher captures events for assertions.
type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}
