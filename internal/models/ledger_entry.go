package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the direction of a posting.
type EntryKind string

const (
	KindCredit EntryKind = "credit"
	KindDebit  EntryKind = "debit"
)

// Valid reports whether k is a known kind.
func (k EntryKind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// Operations that produce ledger entries.
const (
	OperationFund     = "fund"
	OperationTransfer = "transfer"
	OperationPurchase = "purchase"
	OperationRevenue  = "revenue"
)

// LedgerEntry is the immutable record of one balance mutation.
// Entries of an account are ordered by (CreatedAt, Seq); Seq equals the
// account version right after the mutation.
type LedgerEntry struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	AccountID      uint            `gorm:"not null;index:idx_entries_account_seq,priority:1" json:"account_id"`
	Seq            uint64          `gorm:"not null;index:idx_entries_account_seq,priority:2" json:"seq"`
	Kind           EntryKind       `gorm:"size:8;not null" json:"kind"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	UpdatedBalance decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"updated_balance"`
	CorrelationID  string          `gorm:"size:36;not null;index" json:"correlation_id"`
	Operation      string          `gorm:"size:16;not null" json:"operation"`
	Reference      string          `gorm:"size:64" json:"reference,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
}
