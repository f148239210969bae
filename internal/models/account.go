package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account statuses. Accounts are never deleted.
const (
	AccountStatusActive = "active"
	AccountStatusFrozen = "frozen"
)

// Account holds the single balance of a user.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	Currency  string          `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Version   uint64          `gorm:"not null;default:0" json:"version"`
	Status    string          `gorm:"size:16;not null;default:'active'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// Balances only move through the ledger
	a.Balance = decimal.Zero
	a.Version = 0
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
	return nil
}

// Active reports whether the account accepts postings.
func (a *Account) Active() bool {
	return a.Status == AccountStatusActive
}
