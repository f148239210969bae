package handlers

import (
	"errors"

	"ledgerpay/internal/services/ledger"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	wallet wallet.Service
	log    *zap.Logger
}

func NewAdminHandler(walletSvc wallet.Service, log *zap.Logger) *AdminHandler {
	return &AdminHandler{wallet: walletSvc, log: log}
}

// Reconcile replays an account's records against its balance. A failed
// audit is still a successful request; the report says what is wrong.
func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid account id")
	}

	audit, err := h.wallet.Reconcile(c.UserContext(), uint(id))
	if err != nil && !(audit != nil && errors.Is(err, ledger.ErrPartialFailure)) {
		return respondError(c, h.log, err)
	}

	return utils.Success(c, fiber.Map{
		"ok":         audit.OK(),
		"account_id": audit.AccountID,
		"entries":    audit.Entries,
		"balance":    money(audit.Balance),
		"replayed":   money(audit.Replayed),
		"version":    audit.Version,
		"problems":   audit.Problems,
	})
}
