package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	Env  string
	Port string

	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPath          string
	DBMaxIdleConns  int
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	DBConnIdleTime  time.Duration
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	KafkaBrokers    []string
	KafkaTopic      string
	JWTSecret       string
	TokenTTL        time.Duration
	CORSOrigins     string
	BaseCurrency    string
	CurrencyAPIURL  string
	CurrencyAPIKey  string
	RateCacheTTL    time.Duration
	LockTimeout     time.Duration
	MaxFundAmount   string
	AuthRateLimit   int
	RevenueAccount  uint
	SeedProductFile string
}

// DefaultJWTSecret is the signing secret used when JWT_SECRET is unset.
// It is only acceptable outside production.
const DefaultJWTSecret = "change-me"

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")
	ErrDefaultJWTSecret = errors.New("JWT_SECRET must not be the built-in default in production")
)

var defaults = map[string]interface{}{
	"ENV":                   "development",
	"PORT":                  "3000",
	"DB_DRIVER":             "postgres",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "postgres",
	"DB_PASSWORD":           "postgres",
	"DB_NAME":               "digital_wallet",
	"DB_PATH":               "wallet.db",
	"DB_MAX_IDLE_CONNS":     10,
	"DB_MAX_OPEN_CONNS":     100,
	"DB_CONN_MAX_LIFETIME":  "1h",
	"DB_CONN_MAX_IDLE_TIME": "30m",
	"REDIS_HOST":            "",
	"REDIS_PORT":            "6379",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"KAFKA_BROKERS":         "",
	"KAFKA_TOPIC":           "ledger_operations",
	"JWT_SECRET":            DefaultJWTSecret,
	"TOKEN_TTL":             "15m",
	"CORS_ORIGINS":          "*",
	"BASE_CURRENCY":         "INR",
	"CURRENCY_API_URL":      "https://api.currencyapi.com/v3/latest",
	"CURRENCY_API_KEY":      "",
	"RATE_CACHE_TTL":        "10m",
	"LOCK_TIMEOUT":          "2s",
	"MAX_FUND_AMOUNT":       "",
	"AUTH_RATE_LIMIT":       5,
	"REVENUE_ACCOUNT_ID":    0,
	"SEED_PRODUCT_FILE":     "",
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads .env, then the process environment, into a Config.
func Load() *Config {
	LoadEnv()

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	return &Config{
		Env:             v.GetString("ENV"),
		Port:            v.GetString("PORT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBPath:          v.GetString("DB_PATH"),
		DBMaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		DBMaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		DBConnLifetime:  v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBConnIdleTime:  v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		RedisHost:       v.GetString("REDIS_HOST"),
		RedisPort:       v.GetString("REDIS_PORT"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		KafkaBrokers:    splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:      v.GetString("KAFKA_TOPIC"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		BaseCurrency:    strings.ToUpper(v.GetString("BASE_CURRENCY")),
		CurrencyAPIURL:  v.GetString("CURRENCY_API_URL"),
		CurrencyAPIKey:  v.GetString("CURRENCY_API_KEY"),
		RateCacheTTL:    v.GetDuration("RATE_CACHE_TTL"),
		LockTimeout:     v.GetDuration("LOCK_TIMEOUT"),
		MaxFundAmount:   v.GetString("MAX_FUND_AMOUNT"),
		AuthRateLimit:   v.GetInt("AUTH_RATE_LIMIT"),
		RevenueAccount:  v.GetUint("REVENUE_ACCOUNT_ID"),
		SeedProductFile: v.GetString("SEED_PRODUCT_FILE"),
	}
}

// IsProduction reports whether the config is for a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings the service must not start with.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return ErrMissingJWTSecret
	}
	if c.IsProduction() && secret == DefaultJWTSecret {
		return ErrDefaultJWTSecret
	}
	return nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
