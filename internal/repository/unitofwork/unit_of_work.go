package unitofwork

import (
	"context"

	"clara-backend/internal/repository/contract"
)

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork scopes repository access to one logical operation. Between
// Begin and Commit every repository shares one transaction, so multi-row
// writes (a session plus its refresh token, a document plus its chunks)
// land all-or-nothing.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
	RefreshTokenRepository() contract.RefreshTokenRepository
	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	EmbeddingRepository() contract.EmbeddingRepository
}
