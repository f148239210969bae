// Package user registers users and opens their accounts.
package user

import (
	"context"
	"errors"
	"strings"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput  = errors.New("username and password are required")
	ErrPasswordLong  = errors.New("password must be at most 72 bytes")
	ErrInvalidRole   = errors.New("unknown role")
	ErrUsernameTaken = repositories.ErrDuplicateUser
	ErrUserNotFound  = repositories.ErrUserNotFound
)

type Service interface {
	// Register creates the user and its zero-balance account together.
	Register(ctx context.Context, username, password string) (*models.User, error)
	// RegisterWithRole is Register for a non-default role.
	RegisterWithRole(ctx context.Context, username, password, role string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type service struct {
	repo     repositories.UserRepository
	currency string
	cost     int
}

func NewService(repo repositories.UserRepository, currency string) Service {
	if currency == "" {
		currency = "INR"
	}
	return &service{
		repo:     repo,
		currency: currency,
		cost:     bcrypt.DefaultCost,
	}
}

func (s *service) Register(ctx context.Context, username, password string) (*models.User, error) {
	return s.RegisterWithRole(ctx, username, password, models.RoleUser)
}

func (s *service) RegisterWithRole(ctx context.Context, username, password, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if len(password) > 72 {
		return nil, ErrPasswordLong
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Username:     username,
		Password:     string(hashedPassword),
		Role:         role,
		TokenVersion: 1,
	}
	account := &models.Account{Currency: s.currency}
	if err := s.repo.CreateWithAccount(ctx, user, account); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetByUsername(ctx, strings.TrimSpace(username))
}
