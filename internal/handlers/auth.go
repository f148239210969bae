package handlers

import (
	"ledgerpay/internal/services/auth"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	auth auth.Service
	log  *zap.Logger
}

func NewAuthHandler(authService auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, log: log}
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	u, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return utils.Success(c, fiber.Map{
		"token":    token,
		"user_id":  u.ID,
		"username": u.Username,
	})
}

// Logout revokes every access token issued to the caller so far.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	if err := h.auth.Logout(c.UserContext(), userID); err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"message": "Logged out"})
}
