// Package handlers implements the fiber handlers of the wallet API.
package handlers

import (
	"encoding/json"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/utils"
	"ledgerpay/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// money renders an amount as a JSON number with two decimal places.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// parseBody decodes the JSON body into dst and validates it.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.ErrValidation.WithMessage("invalid request body")
	}
	return validation.Struct(dst)
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	return utils.CallerID(c)
}
