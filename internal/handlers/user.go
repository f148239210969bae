package handlers

import (
	"ledgerpay/internal/services/user"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type UserHandler struct {
	users user.Service
	log   *zap.Logger
}

func NewUserHandler(users user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// Register creates a user with an empty account.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	u, err := h.users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	h.log.Info("user registered", zap.Uint("user_id", u.ID))
	return utils.Created(c, fiber.Map{
		"message": "User created",
		"id":      u.ID,
	})
}
