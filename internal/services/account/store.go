// Package account is the account store: balances, per-account exclusive
// access and the read-modify-write of a single balance.
package account

import (
	"context"
	"fmt"
	"time"

	"ledgerpay/internal/metrics"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/shopspring/decimal"
)

// DefaultLockTimeout bounds the wait for account locks.
const DefaultLockTimeout = 2 * time.Second

// Store owns account balances. Mutations must run inside a unit obtained
// from WithinTx while the caller holds the account lock from Acquire.
type Store struct {
	repo    repositories.AccountRepository
	locks   *Locker
	metrics metrics.Collector
	now     func() time.Time
}

// NewStore creates an account store.
func NewStore(repo repositories.AccountRepository, lockTimeout time.Duration, m metrics.Collector) *Store {
	if repo == nil {
		panic("repo is required")
	}
	if m == nil {
		m = &metrics.NoopCollector{}
	}
	return &Store{
		repo:    repo,
		locks:   NewLocker(lockTimeout),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a snapshot of the account.
func (s *Store) Get(ctx context.Context, id uint) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUser returns a snapshot of the account owned by userID.
func (s *Store) GetByUser(ctx context.Context, userID uint) (*models.Account, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Open creates the zero-balance account of userID.
func (s *Store) Open(ctx context.Context, userID uint, currency string) (*models.Account, error) {
	acc := &models.Account{UserID: userID, Currency: currency}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Acquire takes the exclusive locks of ids in ascending order.
func (s *Store) Acquire(ctx context.Context, ids ...uint) (func(), error) {
	start := time.Now()
	release, err := s.locks.Acquire(ctx, ids...)
	s.metrics.RecordLockWait(time.Since(start))
	return release, err
}

// WithinTx runs fn as one atomic unit.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.AccountRepository) error) error {
	return s.repo.ExecuteInTransaction(ctx, fn)
}

// Credit adds amount to the balance and returns the updated account.
func (s *Store) Credit(ctx context.Context, tx repositories.AccountRepository, id uint, amount decimal.Decimal) (*models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return s.apply(ctx, tx, id, amount)
}

// Debit subtracts amount from the balance and returns the updated account.
// The balance check uses the locked read, never an earlier snapshot.
func (s *Store) Debit(ctx context.Context, tx repositories.AccountRepository, id uint, amount decimal.Decimal) (*models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return s.apply(ctx, tx, id, amount.Neg())
}

func (s *Store) apply(ctx context.Context, tx repositories.AccountRepository, id uint, delta decimal.Decimal) (*models.Account, error) {
	acc, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acc.Active() {
		return nil, ErrAccountFrozen
	}

	next := acc.Balance.Add(delta)
	if next.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	at := s.now()
	if at.Before(acc.UpdatedAt) {
		at = acc.UpdatedAt
	}

	expected := acc.Version
	acc.Balance = next
	acc.Version++
	acc.UpdatedAt = at
	if err := tx.UpdateBalance(ctx, acc, expected); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", id, err)
	}
	return acc, nil
}

// ValidateAmount accepts positive amounts with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}
