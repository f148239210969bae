package transfer

import (
	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds orchestrator settings.
type Config struct {
	// RevenueAccount receives purchase amounts when non-zero.
	RevenueAccount uint
	// MaxFundAmount caps a single funding; zero means unbounded.
	MaxFundAmount decimal.Decimal
}

// Result describes a committed operation.
type Result struct {
	CorrelationID string               `json:"correlation_id"`
	Operation     string               `json:"operation"`
	Balance       decimal.Decimal      `json:"balance"`
	ToBalance     decimal.Decimal      `json:"to_balance,omitempty"`
	Entries       []models.LedgerEntry `json:"entries"`
}

// leg is one posting of an operation.
type leg struct {
	accountID uint
	kind      models.EntryKind
	reference string
	operation string
	// reached is the state after the leg is applied.
	reached State
}
