package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "INR", cfg.BaseCurrency)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, 10*time.Minute, cfg.RateCacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 5, cfg.AuthRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOCK_TIMEOUT", "750ms")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BASE_CURRENCY", "usd")
	t.Setenv("REVENUE_ACCOUNT_ID", "7")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 750*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, uint(7), cfg.RevenueAccount)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{name: "default secret in development", env: map[string]string{"ENV": "development"}},
		{
			name:    "default secret in production",
			env:     map[string]string{"ENV": "production"},
			wantErr: ErrDefaultJWTSecret,
		},
		{
			name:    "explicit default in production",
			env:     map[string]string{"ENV": "production", "JWT_SECRET": DefaultJWTSecret},
			wantErr: ErrDefaultJWTSecret,
		},
		{
			name: "own secret in production",
			env:  map[string]string{"ENV": "production", "JWT_SECRET": "s3cr3t-from-vault"},
		},
		{
			name:    "blank secret",
			env:     map[string]string{"JWT_SECRET": "   "},
			wantErr: ErrMissingJWTSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := Load().Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_KEY", "value")
	t.Setenv("EMPTY_KEY", "")

	assert.Equal(t, "value", GetEnv("SOME_KEY", "default"))
	assert.Equal(t, "default", GetEnv("EMPTY_KEY", "default"))
	assert.Equal(t, "default", GetEnv("MISSING_KEY", "default"))
}
