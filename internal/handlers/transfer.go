package handlers

import (
	"errors"

	"ledgerpay/internal/services/transfer"
	"ledgerpay/internal/services/user"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type payRequest struct {
	To     string          `json:"to" validate:"required,max=64"`
	Amount decimal.Decimal `json:"amt" validate:"money"`
}

type buyRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

// TransferHandler serves the operations that move money out of the
// caller's account.
type TransferHandler struct {
	transfers transfer.Service
	wallet    wallet.Service
	users     user.Service
	log       *zap.Logger
}

func NewTransferHandler(transfers transfer.Service, walletSvc wallet.Service, users user.Service, log *zap.Logger) *TransferHandler {
	return &TransferHandler{
		transfers: transfers,
		wallet:    walletSvc,
		users:     users,
		log:       log,
	}
}

// Pay moves amt from the caller to the user named by to.
func (h *TransferHandler) Pay(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req payRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	ctx := c.UserContext()
	from, err := h.wallet.Account(ctx, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	recipient, err := h.users.GetByUsername(ctx, req.To)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			err = transfer.ErrRecipientNotFound
		}
		return respondError(c, h.log, err)
	}
	to, err := h.wallet.Account(ctx, recipient.ID)
	if err != nil {
		if errors.Is(err, wallet.ErrAccountNotFound) {
			err = transfer.ErrRecipientNotFound
		}
		return respondError(c, h.log, err)
	}

	res, err := h.transfers.Transfer(ctx, from.ID, to.ID, req.Amount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{
		"balance":        money(res.Balance),
		"correlation_id": res.CorrelationID,
	})
}

// Buy debits the caller by the price of a catalog product.
func (h *TransferHandler) Buy(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req buyRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	acc, err := h.wallet.Account(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.transfers.Buy(c.UserContext(), acc.ID, req.ProductID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{
		"message":        "Product purchased",
		"balance":        money(res.Balance),
		"correlation_id": res.CorrelationID,
	})
}
