package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id            uuid.UUID
	Email         string
	PasswordHash  *string
	EmailVerified bool
	Metadata      map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session is one issued access token. At most one live row per token string;
// expiry is enforced by lookup filtering, never by a background sweeper.
type Session struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshToken is the longer-lived half of a credential pair. It is consumed
// (deleted) exactly once on refresh; replay of a consumed token must fail.
type RefreshToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
