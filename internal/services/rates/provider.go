// Package rates converts amounts between currencies using an external
// rate source.
package rates

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrConversionUnavailable = errors.New("currency conversion unavailable")
	ErrInvalidCurrency       = errors.New("invalid currency code")
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Provider returns the multiplier converting base into target.
type Provider interface {
	Rate(ctx context.Context, base, target string) (decimal.Decimal, error)
}

// Normalize upper-cases a currency code and checks its shape.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyCode.MatchString(code) {
		return "", ErrInvalidCurrency
	}
	return code, nil
}

// Convert multiplies amount by the base to target rate and rounds to two
// decimal places.
func Convert(ctx context.Context, p Provider, amount decimal.Decimal, base, target string) (decimal.Decimal, error) {
	rate, err := p.Rate(ctx, base, target)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}
