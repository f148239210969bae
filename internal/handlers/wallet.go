package handlers

import (
	"encoding/json"

	"ledgerpay/internal/services/transfer"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"
	"ledgerpay/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fundRequest struct {
	Amount decimal.Decimal `json:"amt" validate:"money"`
}

type balanceQuery struct {
	Currency string `query:"currency" json:"currency" validate:"omitempty,currency"`
}

type statementLine struct {
	Kind           string      `json:"kind"`
	Amount         json.Number `json:"amt"`
	UpdatedBalance json.Number `json:"updated_bal"`
	Operation      string      `json:"operation"`
	Reference      string      `json:"reference,omitempty"`
	CorrelationID  string      `json:"correlation_id"`
	Timestamp      string      `json:"timestamp"`
}

// WalletHandler serves the balance endpoints of the caller's account.
type WalletHandler struct {
	wallet    wallet.Service
	transfers transfer.Service
	log       *zap.Logger
}

func NewWalletHandler(walletSvc wallet.Service, transfers transfer.Service, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		wallet:    walletSvc,
		transfers: transfers,
		log:       log,
	}
}

// Fund credits the caller's account.
func (h *WalletHandler) Fund(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req fundRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	acc, err := h.wallet.Account(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.transfers.Fund(c.UserContext(), acc.ID, req.Amount)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return utils.Success(c, fiber.Map{
		"balance":        money(res.Balance),
		"correlation_id": res.CorrelationID,
	})
}

// Balance returns the caller's balance, converted when ?currency= is set.
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var q balanceQuery
	if err := c.QueryParser(&q); err != nil {
		return utils.BadRequest(c, "invalid query")
	}
	if err := validation.Struct(q); err != nil {
		return respondError(c, h.log, err)
	}

	view, err := h.wallet.Balance(c.UserContext(), userID, q.Currency)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{
		"balance":  money(view.Balance),
		"currency": view.Currency,
	})
}

// Statement lists the caller's records newest first. Without ?limit= the
// whole history is returned.
func (h *WalletHandler) Statement(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	page, err := utils.GetPagination(c, 0)
	if err != nil {
		return respondError(c, h.log, err)
	}

	lines, err := h.wallet.Statement(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := make([]statementLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, statementLine{
			Kind:           string(l.Kind),
			Amount:         money(l.Amount),
			UpdatedBalance: money(l.UpdatedBalance),
			Operation:      l.Operation,
			Reference:      l.Reference,
			CorrelationID:  l.CorrelationID,
			Timestamp:      l.Timestamp.UTC().Format("2006-01-02T15:04:05.000000"),
		})
	}
	return utils.Success(c, out)
}
