package account

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) repositories.AccountRepository {
	t.Helper()
	db, err := repositories.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = repositories.Close(db) })
	return repositories.NewAccountRepository(db)
}

func backends(t *testing.T) map[string]repositories.AccountRepository {
	return map[string]repositories.AccountRepository{
		"memory": memory.NewStore(),
		"sqlite": newSQLiteRepo(t),
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openAccount(t *testing.T, repo repositories.AccountRepository, userID uint) *models.Account {
	t.Helper()
	acc := &models.Account{UserID: userID, Currency: "INR"}
	require.NoError(t, repo.Create(context.Background(), acc))
	return acc
}

func TestStore_CreditDebit(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(repo, time.Second, nil)
			acc := openAccount(t, repo, 1)

			var credited, debited *models.Account
			err := s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
				var err error
				credited, err = s.Credit(ctx, tx, acc.ID, d("100.00"))
				if err != nil {
					return err
				}
				debited, err = s.Debit(ctx, tx, acc.ID, d("30.50"))
				return err
			})
			require.NoError(t, err)

			assert.True(t, credited.Balance.Equal(d("100")))
			assert.Equal(t, uint64(1), credited.Version)
			assert.True(t, debited.Balance.Equal(d("69.50")))
			assert.Equal(t, uint64(2), debited.Version)
			assert.False(t, debited.UpdatedAt.Before(credited.UpdatedAt))

			got, err := s.Get(ctx, acc.ID)
			require.NoError(t, err)
			assert.True(t, got.Balance.Equal(d("69.5")))
			assert.Equal(t, uint64(2), got.Version)
		})
	}
}

func TestStore_DebitInsufficientFunds(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(repo, time.Second, nil)
			acc := openAccount(t, repo, 1)

			err := s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
				if _, err := s.Credit(ctx, tx, acc.ID, d("10")); err != nil {
					return err
				}
				_, err := s.Debit(ctx, tx, acc.ID, d("10.01"))
				return err
			})
			assert.ErrorIs(t, err, ErrInsufficientFunds)

			// the whole unit was discarded, including the credit
			got, err := s.Get(ctx, acc.ID)
			require.NoError(t, err)
			assert.True(t, got.Balance.IsZero())
			assert.Equal(t, uint64(0), got.Version)
		})
	}
}

func TestStore_InvalidAmounts(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	s := NewStore(repo, time.Second, nil)
	acc := openAccount(t, repo, 1)

	for _, amount := range []string{"0", "-5", "1.005"} {
		err := s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
			_, err := s.Credit(ctx, tx, acc.ID, d(amount))
			return err
		})
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)

		err = s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
			_, err := s.Debit(ctx, tx, acc.ID, d(amount))
			return err
		})
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}
}

func TestStore_UnknownAccount(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(repo, time.Second, nil)

			_, err := s.Get(ctx, 404)
			assert.ErrorIs(t, err, ErrAccountNotFound)

			err = s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
				_, err := s.Credit(ctx, tx, 404, d("1"))
				return err
			})
			assert.ErrorIs(t, err, ErrAccountNotFound)
		})
	}
}

func TestStore_FrozenAccount(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	s := NewStore(repo, time.Second, nil)
	acc := &models.Account{UserID: 5, Status: models.AccountStatusFrozen}
	require.NoError(t, repo.Create(ctx, acc))

	err := s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		_, err := s.Credit(ctx, tx, acc.ID, d("1"))
		return err
	})
	assert.ErrorIs(t, err, ErrAccountFrozen)
}

func TestStore_StaleVersionRejected(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	s := NewStore(repo, time.Second, nil)
	acc := openAccount(t, repo, 1)

	err := s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		_, err := s.Credit(ctx, tx, acc.ID, d("5"))
		return err
	})
	require.NoError(t, err)

	stale := *acc
	stale.Balance = d("1000")
	stale.Version = 1
	err = repo.UpdateBalance(ctx, &stale, 0)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)
}

func TestStore_ClockNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	s := NewStore(repo, time.Second, nil)
	acc := openAccount(t, repo, 1)

	future := time.Now().Add(time.Hour).UTC()
	s.now = func() time.Time { return future }
	err := s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		_, err := s.Credit(ctx, tx, acc.ID, d("1"))
		return err
	})
	require.NoError(t, err)

	s.now = func() time.Time { return future.Add(-time.Minute) }
	var after *models.Account
	err = s.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		var err error
		after, err = s.Credit(ctx, tx, acc.ID, d("1"))
		return err
	})
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.Equal(future))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(d("0.01")))
	assert.NoError(t, ValidateAmount(d("150.50")))
	assert.ErrorIs(t, ValidateAmount(d("0")), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(d("-1")), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(d("0.001")), ErrInvalidAmount)
}

func TestStore_Open(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(repo, time.Second, nil)

			acc, err := s.Open(ctx, 7, "INR")
			require.NoError(t, err)
			assert.NotZero(t, acc.ID)
			assert.True(t, acc.Balance.IsZero())

			got, err := s.GetByUser(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, acc.ID, got.ID)

			_, err = s.Open(ctx, 7, "INR")
			assert.ErrorIs(t, err, repositories.ErrDuplicateAccount)
		})
	}
}
