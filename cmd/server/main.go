// Package main starts the wallet HTTP API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerpay/internal/config"
	"ledgerpay/internal/events"
	"ledgerpay/internal/events/kafka"
	"ledgerpay/internal/logger"
	"ledgerpay/internal/metrics"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/cache"
	"ledgerpay/internal/routes"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.IsProduction())
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	db, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("connected to database", zap.String("driver", cfg.DBDriver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logDBStats(ctx, db, log)

	var cacheService *cache.CacheService
	if cfg.RedisHost != "" {
		client, err := cache.NewRedisClient(ctx, &cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// The service works without redis, only slower
			log.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheService = cache.NewCacheService(client, cfg.RateCacheTTL)
			defer func() { _ = cacheService.Close() }()
			log.Info("connected to redis", zap.String("host", cfg.RedisHost))
		}
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = p.Close() }()
		publisher = p
		log.Info("publishing ledger events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewPrometheusCollector(registry)

	app := fiber.New(fiber.Config{
		AppName:      "ledgerpay",
		ErrorHandler: errorHandler(log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	err = routes.SetupRoutes(app, routes.Dependencies{
		DB:        db,
		Cache:     cacheService,
		Publisher: publisher,
		Metrics:   collector,
		Gatherer:  registry,
		Config:    cfg,
		Log:       log,
	})
	if err != nil {
		log.Fatal("failed to set up routes", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes, in the API error format.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := utils.CodeValidation
			switch fe.Code {
			case fiber.StatusNotFound:
				code = utils.CodeNotFound
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			}
			return utils.Error(c, fe.Code, code, fe.Message)
		}
		log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return utils.InternalError(c, "internal server error")
	}
}

func logDBStats(ctx context.Context, db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.Debug("db stats",
				zap.Int("open", stats.OpenConnections),
				zap.Int("idle", stats.Idle),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
	}
}
