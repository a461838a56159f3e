package service

import (
	"context"
	"testing"
	"time"

	"clara-backend/internal/apperror"
	"clara-backend/internal/config"
	"clara-backend/internal/dto"
	"clara-backend/internal/pkg/token"
	"clara-backend/internal/repository/unitofwork"
	"clara-backend/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  7 * 24 * time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func newAuthFixture(t *testing.T) (IAuthService, *fakeFactory, *recordingPublisher) {
	t.Helper()
	factory := newFakeFactory()
	publisher := &recordingPublisher{}
	cfg := testAuthConfig()
	svc := NewAuthService(factory, token.NewCodec(cfg.JWTSecret), cfg, nopLogger{}, publisher)
	return svc, factory, publisher
}

func TestSignupThenSignin(t *testing.T) {
	svc, factory, publisher := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{
		Email:    "clara@example.com",
		Password: "hunter22",
		Metadata: map[string]interface{}{"plan": "free"},
	})
	require.NoError(t, err)
	assert.Equal(t, "clara@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)
	assert.NotEqual(t, res.Token, res.RefreshToken)

	// Both halves of the credential pair are persisted.
	assert.Len(t, factory.store.sessions, 1)
	assert.Len(t, factory.store.refreshTokens, 1)

	signin, err := svc.Signin(ctx, &dto.SigninRequest{
		Email:    "clara@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, res.User.Id, signin.User.Id)

	require.Len(t, publisher.published, 2)
	assert.Equal(t, events.TypeUserSignup, publisher.published[0].EventType())
	assert.Equal(t, events.TypeUserSignin, publisher.published[1].EventType())
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, factory, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &dto.SignupRequest{Email: "dup@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, &dto.SignupRequest{Email: "dup@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	// The failed attempt leaves no partial state behind.
	assert.Len(t, factory.store.users, 1)
	assert.Len(t, factory.store.sessions, 1)
	assert.Len(t, factory.store.refreshTokens, 1)
}

func TestSigninUniformFailure(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &dto.SignupRequest{Email: "known@example.com", Password: "correct1"})
	require.NoError(t, err)

	// Wrong password and unknown email look identical to the caller.
	_, wrongPass := svc.Signin(ctx, &dto.SigninRequest{Email: "known@example.com", Password: "wrong"})
	_, unknown := svc.Signin(ctx, &dto.SigninRequest{Email: "nobody@example.com", Password: "correct1"})

	assert.ErrorIs(t, wrongPass, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, apperror.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestValidate(t *testing.T) {
	svc, factory, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "valid@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "valid@example.com", user.Email)

	// Garbage string
	_, err = svc.Validate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// A refresh token is not an access token.
	_, err = svc.Validate(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// Revoked session: same token now fails identically to garbage.
	require.NoError(t, svc.Logout(ctx, res.Token))
	_, err = svc.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// Expired session row: decodable token with no live row fails too.
	res2, err := svc.Signin(ctx, &dto.SigninRequest{Email: "valid@example.com", Password: "secret1"})
	require.NoError(t, err)
	for _, session := range factory.store.sessions {
		if session.Token == res2.Token {
			session.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
	_, err = svc.Validate(ctx, res2.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestValidateUserGone(t *testing.T) {
	svc, factory, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "gone@example.com", Password: "secret1"})
	require.NoError(t, err)

	factory.store.users = nil

	_, err = svc.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRefreshRotation(t *testing.T) {
	svc, factory, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "rotate@example.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.Token, rotated.Token)
	assert.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	// Replay of the consumed token fails.
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// The rotated pair works.
	_, err = svc.Validate(ctx, rotated.Token)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)

	// Exactly one live refresh row remains after two rotations.
	assert.Len(t, factory.store.refreshTokens, 1)
}

// stolenRowFactory empties the refresh-token table the moment a transaction
// opens, standing in for a concurrent refresh of the same token that
// committed first. The loser has already passed the FindOne check, so only
// the consuming delete can stop it.
type stolenRowFactory struct {
	*fakeFactory
}

func (f *stolenRowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &stolenRowUnitOfWork{fakeUnitOfWork: &fakeUnitOfWork{store: f.store}}
}

type stolenRowUnitOfWork struct {
	*fakeUnitOfWork
}

func (u *stolenRowUnitOfWork) Begin(ctx context.Context) error {
	u.store.refreshTokens = nil
	return u.fakeUnitOfWork.Begin(ctx)
}

func TestRefreshLostRaceFails(t *testing.T) {
	svc, factory, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "race@example.com", Password: "secret1"})
	require.NoError(t, err)

	cfg := testAuthConfig()
	racer := NewAuthService(&stolenRowFactory{fakeFactory: factory}, token.NewCodec(cfg.JWTSecret), cfg, nopLogger{}, nil)

	// Exactly one of two concurrent uses of the same refresh token may
	// succeed; the one whose delete matches no row must fail.
	_, err = racer.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// No replacement pair was minted for the loser.
	assert.Empty(t, factory.store.refreshTokens)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "kinds@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestRefreshExpiredRow(t *testing.T) {
	svc, factory, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "stale@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, stored := range factory.store.refreshTokens {
		stored.ExpiresAt = time.Now().Add(-time.Minute)
	}

	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &dto.SignupRequest{Email: "bye@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.NoError(t, svc.Logout(ctx, res.Token))
	assert.NoError(t, svc.Logout(ctx, res.Token))
	assert.NoError(t, svc.Logout(ctx, "never-issued"))
}
