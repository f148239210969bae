package rates

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
)

const testHost = "https://api.currencyapi.com"

func TestClient_Rate(t *testing.T) {
	defer gock.Off()

	gock.New(testHost).
		Get("/v3/latest").
		MatchParam("apikey", "secret").
		MatchParam("base_currency", "INR").
		MatchParam("currencies", "USD").
		Reply(200).
		BodyString(`{"data": {"USD": {"code": "USD", "value": 0.012}}}`)

	c := NewClient("", "secret", time.Second)
	rate, err := c.Rate(context.Background(), "inr", "usd")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.012")))
	assert.True(t, gock.IsDone())
}

func TestClient_SameCurrency(t *testing.T) {
	defer gock.Off()
	gock.New(testHost).Get("/v3/latest").Reply(500)

	c := NewClient("", "secret", time.Second)
	rate, err := c.Rate(context.Background(), "INR", "INR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.False(t, gock.IsDone())
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		setup   func()
		wantErr error
	}{
		{
			name:   "server error",
			target: "USD",
			setup: func() {
				gock.New(testHost).Get("/v3/latest").Reply(500)
			},
			wantErr: ErrConversionUnavailable,
		},
		{
			name:   "currency missing from answer",
			target: "EUR",
			setup: func() {
				gock.New(testHost).Get("/v3/latest").Reply(200).
					BodyString(`{"data": {"USD": {"code": "USD", "value": 0.012}}}`)
			},
			wantErr: ErrConversionUnavailable,
		},
		{
			name:   "malformed body",
			target: "USD",
			setup: func() {
				gock.New(testHost).Get("/v3/latest").Reply(200).BodyString(`not json`)
			},
			wantErr: ErrConversionUnavailable,
		},
		{
			name:   "zero rate",
			target: "USD",
			setup: func() {
				gock.New(testHost).Get("/v3/latest").Reply(200).
					BodyString(`{"data": {"USD": {"code": "USD", "value": 0}}}`)
			},
			wantErr: ErrConversionUnavailable,
		},
		{
			name:    "invalid code",
			target:  "dollars",
			setup:   func() {},
			wantErr: ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.setup()

			c := NewClient("", "secret", time.Second)
			_, err := c.Rate(context.Background(), "INR", tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConvert(t *testing.T) {
	defer gock.Off()
	gock.New(testHost).Get("/v3/latest").Reply(200).
		BodyString(`{"data": {"USD": {"code": "USD", "value": 0.0119876}}}`)

	got, err := Convert(context.Background(), NewClient("", "k", time.Second), decimal.RequireFromString("150.00"), "INR", "USD")
	require.NoError(t, err)
	assert.Equal(t, "1.80", got.StringFixed(2))
}
