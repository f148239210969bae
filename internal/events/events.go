// Package events defines the notifications emitted after ledger operations
// commit.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerOperationCompleted is emitted once per committed fund, transfer or
// purchase.
type LedgerOperationCompleted struct {
	CorrelationID string          `json:"correlation_id"`
	Operation     string          `json:"operation"`
	FromAccount   uint            `json:"from_account,omitempty"`
	ToAccount     uint            `json:"to_account,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher delivers events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event *LedgerOperationCompleted) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *LedgerOperationCompleted) error { return nil }
