package errors

import "net/http"

var (
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid request",
		Status:  http.StatusBadRequest,
	}
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "not found",
		Status:  http.StatusNotFound,
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient funds",
		Status:  http.StatusBadRequest,
	}
	ErrBusy = &DomainError{
		Code:    "BUSY",
		Message: "account is busy, retry later",
		Status:  http.StatusServiceUnavailable,
	}
	ErrConversionUnavailable = &DomainError{
		Code:    "CONVERSION_UNAVAILABLE",
		Message: "currency conversion failed",
		Status:  http.StatusBadGateway,
	}
	ErrPartialFailure = &DomainError{
		Code:    "PARTIAL_FAILURE",
		Message: "operation failed and needs reconciliation",
		Status:  http.StatusInternalServerError,
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "invalid credentials",
		Status:  http.StatusUnauthorized,
	}
	ErrConflict = &DomainError{
		Code:    "CONFLICT",
		Message: "username already exists",
		Status:  http.StatusBadRequest,
	}
	ErrInternal = &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
	}
)
