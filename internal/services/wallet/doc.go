/*
Package wallet is the read side of the ledger for account holders.

The wallet service answers two questions for a user:
- What is my balance, optionally converted to another currency
- What happened to my balance (the statement, newest first)

Usage:

	// Create a new wallet service
	svc := wallet.NewService(store, engine, rateProvider, logger)

	// Balance in the account currency
	view, err := svc.Balance(ctx, userID, "")

	// Balance converted to USD, rounded to two decimals
	view, err = svc.Balance(ctx, userID, "USD")

	// Statement page
	lines, err := svc.Statement(ctx, userID, limit, offset)

Balances are snapshots taken without account locks; they may be stale the
moment they are returned but never show a half-applied operation.

Error Handling:

  - ErrAccountNotFound: the user has no account
  - rates.ErrInvalidCurrency: the requested code is not a currency code
  - rates.ErrConversionUnavailable: the rate source failed; the balance is
    never shown with a guessed rate
*/
package wallet
