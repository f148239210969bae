package repositories

import (
	"context"
	"errors"

	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrVersionConflict  = errors.New("account version conflict")
)

// AccountRepository is the persistence contract of the account store and
// the ledger. Entries can only be appended.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Account, error)

	// GetForUpdate reads the account holding its row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Account, error)

	// UpdateBalance persists Balance, Version and UpdatedAt of account if the
	// stored version still equals expectedVersion.
	UpdateBalance(ctx context.Context, account *models.Account, expectedVersion uint64) error

	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
	GetEntries(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, error)
	GetEntriesAscending(ctx context.Context, accountID uint) ([]models.LedgerEntry, error)
	GetEntriesByCorrelation(ctx context.Context, correlationID string) ([]models.LedgerEntry, error)

	TotalBalance(ctx context.Context) (decimal.Decimal, error)

	// ExecuteInTransaction runs fn as one atomic unit; any error from fn
	// discards every change made through the repository passed to it.
	ExecuteInTransaction(ctx context.Context, fn func(AccountRepository) error) error
}
