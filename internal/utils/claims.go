package utils

import (
	"errors"

	"ledgerpay/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Request locals written once the caller is authenticated.
const (
	LocalsClaims = "claims"
	LocalsUserID = "userID"
)

var (
	ErrNoCaller      = errors.New("request has no authenticated caller")
	ErrCallerInvalid = errors.New("request caller has an unexpected type")
)

// SetCaller records the authenticated caller on the request.
func SetCaller(c *fiber.Ctx, claims *models.UserClaims) {
	c.Locals(LocalsClaims, claims)
	c.Locals(LocalsUserID, claims.UserID)
}

// GetUserClaims returns the caller recorded by SetCaller.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	switch v := c.Locals(LocalsClaims).(type) {
	case nil:
		return nil, ErrNoCaller
	case *models.UserClaims:
		if v == nil {
			return nil, ErrNoCaller
		}
		return v, nil
	default:
		return nil, ErrCallerInvalid
	}
}

// CallerID returns the caller's user id, or false when the request is
// anonymous.
func CallerID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalsUserID).(uint)
	return id, ok && id != 0
}
