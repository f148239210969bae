package account

import (
	"errors"

	"ledgerpay/internal/repositories"
)

// Service errors
var (
	ErrAccountNotFound   = repositories.ErrAccountNotFound
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a positive value with at most two decimal places")
	ErrAccountFrozen     = errors.New("account is frozen")
	ErrBusy              = errors.New("account is busy, retry later")
)
