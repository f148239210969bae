package repositories

import (
	"context"
	"errors"

	"ledgerpay/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username already exists")
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// CreateWithAccount stores the user and opens its account in one
	// transaction; account.UserID is filled in.
	CreateWithAccount(ctx context.Context, user *models.User, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	IncrementTokenVersion(ctx context.Context, id uint) error
}
