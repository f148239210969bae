package transfer

import (
	"errors"

	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/ledger"
)

var (
	ErrSelfTransfer      = errors.New("cannot transfer to the same account")
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrFundLimitExceeded = errors.New("amount exceeds the funding limit")
	ErrOutcomeUnknown    = errors.New("operation outcome could not be determined")

	ErrProductNotFound   = repositories.ErrProductNotFound
	ErrAccountNotFound   = ledger.ErrAccountNotFound
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
	ErrInvalidAmount     = ledger.ErrInvalidAmount
	ErrBusy              = ledger.ErrBusy
	ErrPartialFailure    = ledger.ErrPartialFailure
)
