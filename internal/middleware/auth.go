// Package middleware provides the fiber middleware of the HTTP API.
package middleware

import (
	"encoding/base64"
	"errors"
	"strings"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/auth"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware authenticates requests with either HTTP Basic
// credentials or a Bearer access token.
type AuthMiddleware struct {
	authService auth.Service
	log         *zap.Logger
}

func NewAuthMiddleware(authService auth.Service, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// Handler resolves the caller and stores its claims in the request
// context. Bearer tokens are rejected once the user logged out.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="ledgerpay"`)
		return utils.Unauthorized(c, "missing authorization header")
	}

	scheme, credentials, _ := strings.Cut(header, " ")
	var (
		claims *models.UserClaims
		err    error
	)
	switch strings.ToLower(scheme) {
	case "basic":
		claims, err = m.basic(c, credentials)
	case "bearer":
		claims, err = m.authService.VerifyToken(c.UserContext(), strings.TrimSpace(credentials))
	default:
		return utils.Unauthorized(c, "invalid authorization format")
	}

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInvalidToken) {
			m.log.Debug("authentication rejected", zap.String("scheme", scheme), zap.Error(err))
			return utils.Unauthorized(c, err.Error())
		}
		m.log.Error("authentication failed", zap.Error(err))
		return utils.InternalError(c, "internal server error")
	}

	utils.SetCaller(c, claims)
	return c.Next()
}

func (m *AuthMiddleware) basic(c *fiber.Ctx, credentials string) (*models.UserClaims, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(credentials))
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := m.authService.Authenticate(c.UserContext(), username, password)
	if err != nil {
		return nil, err
	}
	return &models.UserClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}, nil
}

// AdminAuthMiddleware lets only admin callers through. It must run after
// AuthMiddleware.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	if claims.Role != models.RoleAdmin {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}
