package transfer

import (
	"context"

	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

// Catalog is the read-only product lookup used by purchases.
type Catalog interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
}

// Service moves money between accounts. Every operation commits all of
// its postings or none of them.
type Service interface {
	Transfer(ctx context.Context, fromID, toID uint, amount decimal.Decimal) (*Result, error)
	Fund(ctx context.Context, accountID uint, amount decimal.Decimal) (*Result, error)
	Buy(ctx context.Context, accountID, productID uint) (*Result, error)
}
