package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"testing"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/auth"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	users map[string]*models.User
	token string
}

func (s *stubAuth) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	u, ok := s.users[username]
	if !ok || u.Password != password {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

func (s *stubAuth) Login(context.Context, string, string) (*models.User, string, error) {
	return nil, "", errors.New("not used")
}

func (s *stubAuth) VerifyToken(_ context.Context, token string) (*models.UserClaims, error) {
	if token != s.token {
		return nil, auth.ErrInvalidToken
	}
	return &models.UserClaims{UserID: 2, Username: "root", Role: models.RoleAdmin}, nil
}

func (s *stubAuth) Logout(context.Context, uint) error { return nil }

func newTestApp() *fiber.App {
	svc := &stubAuth{
		users: map[string]*models.User{
			"alice": {ID: 1, Username: "alice", Password: "secret", Role: models.RoleUser},
		},
		token: "good-token",
	}
	m := NewAuthMiddleware(svc, nil)

	app := fiber.New()
	app.Get("/me", m.Handler, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals(utils.LocalsUserID)})
	})
	app.Get("/admin", m.Handler, AdminAuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", fiber.StatusUnauthorized},
		{"unknown scheme", "/me", "Digest abc", fiber.StatusUnauthorized},
		{"basic ok", "/me", basic("alice", "secret"), fiber.StatusOK},
		{"basic wrong password", "/me", basic("alice", "nope"), fiber.StatusUnauthorized},
		{"basic garbage", "/me", "Basic !!!", fiber.StatusUnauthorized},
		{"bearer ok", "/me", "Bearer good-token", fiber.StatusOK},
		{"bearer revoked", "/me", "Bearer old-token", fiber.StatusUnauthorized},
		{"admin as user", "/admin", basic("alice", "secret"), fiber.StatusForbidden},
		{"admin as admin", "/admin", "Bearer good-token", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
