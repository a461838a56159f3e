package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	Email    string                 `json:"email" validate:"required,email"`
	Password string                 `json:"password" validate:"required,min=6"`
	Metadata map[string]interface{} `json:"metadata"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	Token string `json:"token"`
}

type UserDTO struct {
	Id            uuid.UUID              `json:"id"`
	Email         string                 `json:"email"`
	EmailVerified bool                   `json:"email_verified"`
	Metadata      map[string]interface{} `json:"metadata"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// SessionResponse is the {user, token, refreshToken} triple returned by
// signup, signin and refresh. The two tokens are always issued together.
type SessionResponse struct {
	User         UserDTO `json:"user"`
	Token        string  `json:"token"`
	RefreshToken string  `json:"refreshToken"`
}
