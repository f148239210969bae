package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payRequest struct {
	To     string          `json:"to" validate:"required,max=64"`
	Amount decimal.Decimal `json:"amt" validate:"money"`
}

type rateRequest struct {
	Currency string `json:"currency" validate:"omitempty,currency"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(payRequest{To: "bob", Amount: decimal.RequireFromString("10.50")})
	assert.NoError(t, err)
}

func TestStruct_Money(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"three decimals", "1.005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(payRequest{To: "bob", Amount: decimal.RequireFromString(tt.amount)})
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "must be a positive amount with at most two decimal places", fe["amt"])
		})
	}
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(payRequest{Amount: decimal.NewFromInt(1)})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "is required", fe["to"])
	assert.Equal(t, "to is required", err.Error())
}

func TestStruct_Currency(t *testing.T) {
	assert.NoError(t, Struct(rateRequest{}))
	assert.NoError(t, Struct(rateRequest{Currency: "usd"}))

	err := Struct(rateRequest{Currency: "US1"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "currency")
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	fe := FieldErrors{"b": "is invalid", "a": "is required"}
	assert.Equal(t, "a is required; b is invalid", fe.Error())
}
