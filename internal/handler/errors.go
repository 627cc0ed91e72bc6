package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/delivery"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/money"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/order"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/payment"
)

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a domain error to an HTTP status. Unknown errors are
// reported as 500 with a generic message so internals never leak.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, delivery.ErrNotFound),
		errors.Is(err, discount.ErrNotFound),
		errors.Is(err, payment.ErrMethodNotFound),
		errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrEmpty),
		errors.Is(err, address.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrNotYetActive),
		errors.Is(err, discount.ErrExhausted),
		errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, money.ErrInvalidQuantity),
		errors.Is(err, money.ErrAmountOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Code: status, Message: msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: msg})
}
