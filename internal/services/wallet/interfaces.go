package wallet

import (
	"context"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/ledger"
)

// Service defines the wallet read operations
type Service interface {
	// Account returns the account owned by userID.
	Account(ctx context.Context, userID uint) (*models.Account, error)

	// Balance returns the balance in currency, or in the account currency
	// when currency is empty.
	Balance(ctx context.Context, userID uint, currency string) (*BalanceView, error)

	// Statement returns the user's records, newest first.
	Statement(ctx context.Context, userID uint, limit, offset int) ([]StatementLine, error)

	// Reconcile audits an account against its records.
	Reconcile(ctx context.Context, accountID uint) (*ledger.Audit, error)
}
