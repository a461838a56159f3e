package contract

import (
	"context"

	"clara-backend/internal/entity"
	"clara-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByToken removes the session row matching the exact token
	// string, if any. Deleting a missing row is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefreshToken, error)
	// Consume deletes the row by id and reports whether a row was actually
	// removed. The delete itself is the race-breaker: of two concurrent
	// consumers of the same row, exactly one observes true.
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
}
