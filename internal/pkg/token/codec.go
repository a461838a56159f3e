package token

import (
	"fmt"
	"time"

	"clara-backend/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the decoded payload of a bearer token.
type Claims struct {
	UserId    uuid.UUID
	Email     string
	Kind      Kind
	ExpiresAt time.Time
}

// Codec signs and verifies bearer tokens with a process-wide symmetric
// secret. Verification is pure: it never consults the session store, so a
// verified token may still be revoked.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue encodes the claims, a kind tag and an absolute expiry into a signed
// HS256 token. The returned expiry instant is what the session row stores.
func (c *Codec) Issue(userId uuid.UUID, email string, kind Kind, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"sub":   userId.String(),
		"email": email,
		"type":  string(kind),
		"exp":   expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify decodes a token string. Bad signature, malformed encoding, a wrong
// signing method and a past expiry all collapse into ErrUnauthenticated.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperror.ErrUnauthenticated
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrUnauthenticated
	}

	sub, _ := mapClaims["sub"].(string)
	userId, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	email, _ := mapClaims["email"].(string)
	kindStr, _ := mapClaims["type"].(string)

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, apperror.ErrUnauthenticated
	}

	return &Claims{
		UserId:    userId,
		Email:     email,
		Kind:      Kind(kindStr),
		ExpiresAt: exp.Time,
	}, nil
}
