package ledger

import (
	"errors"

	"ledgerpay/internal/services/account"
)

var (
	ErrAccountNotFound   = account.ErrAccountNotFound
	ErrInsufficientFunds = account.ErrInsufficientFunds
	ErrInvalidAmount     = account.ErrInvalidAmount
	ErrBusy              = account.ErrBusy
	ErrInvalidKind       = errors.New("posting kind must be credit or debit")

	// ErrPartialFailure means a balance and its records disagree. It is
	// never retried and needs manual reconciliation.
	ErrPartialFailure = errors.New("ledger invariant violated")
)
