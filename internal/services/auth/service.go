// Package auth checks credentials and issues access tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// DefaultTokenTTL is the lifetime of access tokens.
const DefaultTokenTTL = 15 * time.Minute

type Service interface {
	// Authenticate checks a username and password.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	// VerifyToken parses an access token and checks it was not revoked.
	VerifyToken(ctx context.Context, token string) (*models.UserClaims, error)
	Logout(ctx context.Context, userID uint) error
}

type service struct {
	userRepo repositories.UserRepository
	secret   string
	ttl      time.Duration
	log      *zap.Logger
}

func NewService(userRepo repositories.UserRepository, secret string, ttl time.Duration, log *zap.Logger) Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		userRepo: userRepo,
		secret:   secret,
		ttl:      ttl,
		log:      log,
	}
}

// dummyHash keeps the response time of unknown usernames close to that of
// wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ledgerpay-dummy"), bcrypt.DefaultCost)

func (s *service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.log.Debug("login failed: unknown user", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Debug("login failed: incorrect password", zap.Uint("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(s.secret, s.ttl, &models.UserClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		s.log.Error("error generating token", zap.Error(err))
		return nil, "", errors.New("error generating token")
	}
	return user, token, nil
}

func (s *service) VerifyToken(ctx context.Context, token string) (*models.UserClaims, error) {
	claims, err := utils.ParseToken(s.secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.userRepo.IncrementTokenVersion(ctx, userID)
}
