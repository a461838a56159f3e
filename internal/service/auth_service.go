package service

import (
	"context"
	"time"

	"clara-backend/internal/apperror"
	"clara-backend/internal/config"
	"clara-backend/internal/dto"
	"clara-backend/internal/entity"
	"clara-backend/internal/pkg/logger"
	"clara-backend/internal/pkg/token"
	"clara-backend/internal/repository/specification"
	"clara-backend/internal/repository/unitofwork"
	"clara-backend/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EventPublisher is satisfied by the in-process bus and the NATS mirror.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SessionResponse, error)
	Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SessionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.SessionResponse, error)
	Validate(ctx context.Context, accessToken string) (*entity.User, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	codec      *token.Codec
	cfg        config.AuthConfig
	log        logger.ILogger
	publisher  EventPublisher
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	codec *token.Codec,
	cfg config.AuthConfig,
	log logger.ILogger,
	publisher EventPublisher,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		codec:      codec,
		cfg:        cfg,
		log:        log,
		publisher:  publisher,
	}
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SessionResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:            uuid.New(),
		Email:         req.Email,
		PasswordHash:  &hashStr,
		EmailVerified: false,
		Metadata:      req.Metadata,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if user.Metadata == nil {
		user.Metadata = map[string]interface{}{}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The unique index decides existence; no read-before-write here.
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	res, err := s.createSession(ctx, uow, user)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeUserSignup, user)
	return res, nil
}

func (s *authService) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	// Unknown email and wrong password are indistinguishable to the caller.
	if user == nil || user.PasswordHash == nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	res, err := s.createSession(ctx, uow, user)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeUserSignin, user)
	return res, nil
}

// createSession issues an access/refresh pair and persists both rows inside
// the caller's transaction. The pair always lands together; there is no
// state where one exists without the other.
func (s *authService) createSession(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*dto.SessionResponse, error) {
	accessToken, accessExpiry, err := s.codec.Issue(user.Id, user.Email, token.KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiry, err := s.codec.Issue(user.Id, user.Email, token.KindRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	session := &entity.Session{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     accessToken,
		ExpiresAt: accessExpiry,
		CreatedAt: time.Now(),
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	refresh := &entity.RefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     refreshToken,
		ExpiresAt: refreshExpiry,
		CreatedAt: time.Now(),
	}
	if err := uow.RefreshTokenRepository().Create(ctx, refresh); err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		User:         toUserDTO(user),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) Validate(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// A decoded-but-revoked token must look exactly like garbage to the
	// caller, so the session row is checked against the current instant.
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByToken{Token: accessToken},
		specification.NotExpired{Now: time.Now()},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrUnauthenticated
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: claims.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	return user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.SessionResponse, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}
	if claims.Kind != token.KindRefresh {
		return nil, apperror.ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.RefreshTokenRepository().FindOne(ctx,
		specification.ByToken{Token: refreshToken},
		specification.NotExpired{Now: time.Now()},
	)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperror.ErrUnauthenticated
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: claims.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Consuming the old row and minting the new pair commit together; the
	// old token can never succeed twice. Rows-affected decides who won a
	// concurrent race on the same token, not the earlier FindOne.
	consumed, err := uow.RefreshTokenRepository().Consume(ctx, stored.Id)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, apperror.ErrUnauthenticated
	}

	res, err := s.createSession(ctx, uow, user)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeSessionRefreshed, user)
	return res, nil
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	// Deleting a missing or already-expired session is a no-op, not an error.
	return uow.SessionRepository().DeleteByToken(ctx, accessToken)
}

func (s *authService) publish(ctx context.Context, eventType string, user *entity.User) {
	if s.publisher == nil {
		return
	}
	event := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id": user.Id.String(),
			"email":   user.Email,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("auth", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func toUserDTO(user *entity.User) dto.UserDTO {
	return dto.UserDTO{
		Id:            user.Id,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Metadata:      user.Metadata,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
