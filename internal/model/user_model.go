package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash  *string   `gorm:"column:encrypted_password;type:varchar(255)"`
	EmailVerified bool      `gorm:"default:false"`
	Metadata      datatypes.JSONMap
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`

	Sessions      []Session      `gorm:"constraint:OnDelete:CASCADE"`
	RefreshTokens []RefreshToken `gorm:"constraint:OnDelete:CASCADE"`
	Documents     []Document     `gorm:"constraint:OnDelete:CASCADE"`
	Embeddings    []Embedding    `gorm:"constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}
