// Package routes wires repositories, services and handlers into the fiber
// application.
package routes

import (
	"fmt"
	"time"

	"ledgerpay/internal/config"
	"ledgerpay/internal/events"
	"ledgerpay/internal/handlers"
	"ledgerpay/internal/metrics"
	"ledgerpay/internal/middleware"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/cache"
	"ledgerpay/internal/services/account"
	"ledgerpay/internal/services/auth"
	"ledgerpay/internal/services/catalog"
	"ledgerpay/internal/services/ledger"
	"ledgerpay/internal/services/rates"
	"ledgerpay/internal/services/transfer"
	"ledgerpay/internal/services/user"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the process-wide resources the routes are built on.
// Cache, Publisher, Rates, Metrics and Gatherer are optional.
type Dependencies struct {
	DB        *gorm.DB
	Cache     *cache.CacheService
	Publisher events.Publisher
	Rates     rates.Provider
	Metrics   metrics.Collector
	Gatherer  prometheus.Gatherer
	Config    *config.Config
	Log       *zap.Logger
}

// SetupRoutes builds the services and registers every route on app.
func SetupRoutes(app *fiber.App, deps Dependencies) error {
	cfg := deps.Config
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = &metrics.NoopCollector{}
	}

	maxFund, err := parseMaxFund(cfg.MaxFundAmount)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := repositories.NewUserRepository(deps.DB)
	accountRepo := repositories.NewAccountRepository(deps.DB)
	productRepo := repositories.NewProductRepository(deps.DB)

	// Services
	store := account.NewStore(accountRepo, cfg.LockTimeout, deps.Metrics)
	engine := ledger.NewEngine(accountRepo, store, log.Named("ledger"), deps.Metrics)

	var catalogCache catalog.Cache
	if deps.Cache != nil {
		catalogCache = deps.Cache
	}
	catalogService := catalog.NewService(productRepo, catalogCache, log.Named("catalog"))

	provider := deps.Rates
	if provider == nil {
		provider = newRateProvider(cfg, deps.Cache, log)
	}

	userService := user.NewService(userRepo, cfg.BaseCurrency)
	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log.Named("auth"))
	walletService := wallet.NewService(store, engine, provider, log.Named("wallet"))
	transferService := transfer.NewService(
		store,
		engine,
		catalogService,
		deps.Publisher,
		transfer.Config{
			RevenueAccount: cfg.RevenueAccount,
			MaxFundAmount:  maxFund,
		},
		log.Named("transfer"),
		deps.Metrics,
	)

	// Handlers
	var pinger handlers.Pinger
	if deps.Cache != nil {
		pinger = deps.Cache
	}
	healthHandler := handlers.NewHealthHandler(deps.DB, pinger, log)
	userHandler := handlers.NewUserHandler(userService, log)
	authHandler := handlers.NewAuthHandler(authService, log)
	walletHandler := handlers.NewWalletHandler(walletService, transferService, log)
	transferHandler := handlers.NewTransferHandler(transferService, walletService, userService, log)
	productHandler := handlers.NewProductHandler(catalogService, log)
	adminHandler := handlers.NewAdminHandler(walletService, log)

	authMiddleware := middleware.NewAuthMiddleware(authService, log.Named("auth"))
	authed := authMiddleware.Handler

	// Public routes
	app.Get("/", healthHandler.Home)
	app.Get("/health", healthHandler.Health)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	app.Post("/register", rateLimit(cfg), userHandler.Register)
	app.Post("/login", rateLimit(cfg), authHandler.Login)
	app.Get("/product", productHandler.List)

	// Authenticated routes
	app.Post("/logout", authed, authHandler.Logout)
	app.Post("/fund", authed, walletHandler.Fund)
	app.Get("/bal", authed, walletHandler.Balance)
	app.Get("/stmt", authed, walletHandler.Statement)
	app.Post("/pay", authed, transferHandler.Pay)
	app.Post("/product", authed, productHandler.Add)
	app.Post("/buy", authed, transferHandler.Buy)

	admin := app.Group("/admin", authed, middleware.AdminAuthMiddleware)
	admin.Get("/reconcile/:id", adminHandler.Reconcile)

	return nil
}

func newRateProvider(cfg *config.Config, c *cache.CacheService, log *zap.Logger) rates.Provider {
	client := rates.NewClient(cfg.CurrencyAPIURL, cfg.CurrencyAPIKey, 5*time.Second)
	if c == nil {
		return client
	}
	return rates.NewCachedProvider(client, c, cfg.RateCacheTTL, log.Named("rates"))
}

// rateLimit limits credential endpoints per client IP. A zero limit
// disables it.
func rateLimit(cfg *config.Config) fiber.Handler {
	if cfg.AuthRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        cfg.AuthRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Error(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests. Please try again later.")
		},
	})
}

func parseMaxFund(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid MAX_FUND_AMOUNT %q", raw)
	}
	return d, nil
}
