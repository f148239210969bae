package wallet

import "ledgerpay/internal/services/account"

// Service errors
var (
	ErrAccountNotFound = account.ErrAccountNotFound
)
