package contract

import (
	"context"

	"clara-backend/internal/entity"
	"clara-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	// Create inserts the user; a duplicate email surfaces as
	// apperror.ErrAlreadyExists via the unique index, which is the
	// authoritative race-breaker.
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
