package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db    *gorm.DB
	cache Pinger
	log   *zap.Logger
}

// NewHealthHandler creates a HealthHandler. cache may be nil when redis is
// not configured.
func NewHealthHandler(db *gorm.DB, cache Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, log: log}
}

func (h *HealthHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Welcome to the Digital Wallet API"})
}

// Health checks the database and, when configured, redis.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{"database": "connected"}

	if err := h.pingDB(ctx); err != nil {
		h.log.Warn("database health check failed", zap.Error(err))
		services["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	if h.cache == nil {
		services["redis"] = "disabled"
	} else if err := h.cache.HealthCheck(ctx); err != nil {
		h.log.Warn("redis health check failed", zap.Error(err))
		services["redis"] = "unavailable"
	} else {
		services["redis"] = "connected"
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   state,
		"services": services,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
