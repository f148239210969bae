// Command admin_seed creates the admin user, the optional revenue account
// and the initial product catalog.
package main

import (
	"context"
	"errors"

	"ledgerpay/internal/config"
	"ledgerpay/internal/logger"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/catalog"
	"ledgerpay/internal/services/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	adminUsername := config.GetEnv("ADMIN_USERNAME", "admin")
	adminPassword := config.GetEnv("ADMIN_PASSWORD", "")
	if adminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set in environment")
	}

	db, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() { _ = repositories.Close(db) }()

	ctx := context.Background()
	users := user.NewService(repositories.NewUserRepository(db), cfg.BaseCurrency)
	accounts := repositories.NewAccountRepository(db)

	admin, err := users.RegisterWithRole(ctx, adminUsername, adminPassword, models.RoleAdmin)
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		log.Info("admin user already exists", zap.String("username", adminUsername))
	case err != nil:
		log.Fatal("failed to create admin user", zap.Error(err))
	default:
		log.Info("admin user created", zap.Uint("user_id", admin.ID))
	}

	if name := config.GetEnv("REVENUE_USERNAME", ""); name != "" {
		seedRevenueAccount(ctx, log, users, accounts, name)
	}

	if cfg.SeedProductFile != "" {
		seedProducts(ctx, log, catalog.NewService(repositories.NewProductRepository(db), nil, log), cfg.SeedProductFile)
	}
}

// seedRevenueAccount creates a login-less user whose account receives
// purchase amounts and logs the id to put in REVENUE_ACCOUNT_ID.
func seedRevenueAccount(ctx context.Context, log *zap.Logger, users user.Service, accounts repositories.AccountRepository, name string) {
	u, err := users.Register(ctx, name, uuid.NewString())
	if errors.Is(err, user.ErrUsernameTaken) {
		u, err = users.GetByUsername(ctx, name)
	}
	if err != nil {
		log.Fatal("failed to create revenue user", zap.Error(err))
	}

	acc, err := accounts.GetByUserID(ctx, u.ID)
	if err != nil {
		log.Fatal("failed to load revenue account", zap.Error(err))
	}
	log.Info("revenue account ready, set REVENUE_ACCOUNT_ID", zap.Uint("account_id", acc.ID))
}

func seedProducts(ctx context.Context, log *zap.Logger, products catalog.Service, path string) {
	existing, err := products.List(ctx)
	if err != nil {
		log.Fatal("failed to list products", zap.Error(err))
	}
	if len(existing) > 0 {
		log.Info("catalog already seeded", zap.Int("products", len(existing)))
		return
	}

	items, err := catalog.LoadProducts(path)
	if err != nil {
		log.Fatal("failed to load products", zap.String("path", path), zap.Error(err))
	}
	for _, p := range items {
		if _, err := products.Add(ctx, p.Name, p.Price, p.Description); err != nil {
			log.Fatal("failed to add product", zap.String("name", p.Name), zap.Error(err))
		}
	}
	log.Info("catalog seeded", zap.Int("products", len(items)))
}
