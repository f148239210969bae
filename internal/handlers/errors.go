package handlers

import (
	"errors"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/services/account"
	"ledgerpay/internal/services/auth"
	"ledgerpay/internal/services/catalog"
	"ledgerpay/internal/services/rates"
	"ledgerpay/internal/services/transfer"
	"ledgerpay/internal/services/user"
	"ledgerpay/internal/utils"
	"ledgerpay/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// toDomainError maps a service error to the HTTP error contract.
func toDomainError(err error) *apperrors.DomainError {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.ErrValidation.WithMessage(fieldErrs.Error())
	}

	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, transfer.ErrRecipientNotFound):
		return apperrors.ErrValidation.WithMessage("Recipient does not exist")
	case errors.Is(err, transfer.ErrProductNotFound):
		return apperrors.ErrValidation.WithMessage("Invalid product")
	case errors.Is(err, transfer.ErrInsufficientFunds):
		return apperrors.ErrInsufficientFunds
	case errors.Is(err, transfer.ErrInvalidAmount),
		errors.Is(err, transfer.ErrSelfTransfer),
		errors.Is(err, transfer.ErrFundLimitExceeded),
		errors.Is(err, account.ErrAccountFrozen),
		errors.Is(err, rates.ErrInvalidCurrency),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, user.ErrPasswordLong),
		errors.Is(err, utils.ErrInvalidPagination):
		return apperrors.ErrValidation.WithMessage(err.Error())
	case errors.Is(err, transfer.ErrAccountNotFound):
		return apperrors.ErrNotFound.WithMessage("account not found")
	case errors.Is(err, transfer.ErrBusy):
		return apperrors.ErrBusy
	case errors.Is(err, rates.ErrConversionUnavailable):
		return apperrors.ErrConversionUnavailable
	case errors.Is(err, transfer.ErrPartialFailure):
		return apperrors.ErrPartialFailure
	case errors.Is(err, user.ErrUsernameTaken):
		return apperrors.ErrConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return apperrors.ErrUnauthorized.WithMessage(err.Error())
	default:
		return nil
	}
}

// respondError writes err as {"error", "code"}. Unknown errors are logged
// and reported as internal errors without their text.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	de := toDomainError(err)
	if de == nil {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		de = apperrors.ErrInternal
	}
	if de.Code == apperrors.ErrBusy.Code {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return utils.Error(c, de.Status, de.Code, de.Message)
}
