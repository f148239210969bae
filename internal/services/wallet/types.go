package wallet

import (
	"time"

	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

// BalanceView is a balance snapshot as shown to the user.
type BalanceView struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	Version  uint64          `json:"version"`
}

// StatementLine is one record of a statement.
type StatementLine struct {
	Kind           models.EntryKind `json:"kind"`
	Amount         decimal.Decimal  `json:"amt"`
	UpdatedBalance decimal.Decimal  `json:"updated_bal"`
	Operation      string           `json:"operation"`
	Reference      string           `json:"reference,omitempty"`
	CorrelationID  string           `json:"correlation_id"`
	Timestamp      time.Time        `json:"timestamp"`
}

func newStatementLine(e models.LedgerEntry) StatementLine {
	return StatementLine{
		Kind:           e.Kind,
		Amount:         e.Amount,
		UpdatedBalance: e.UpdatedBalance,
		Operation:      e.Operation,
		Reference:      e.Reference,
		CorrelationID:  e.CorrelationID,
		Timestamp:      e.CreatedAt,
	}
}
