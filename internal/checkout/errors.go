package checkout

import (
	"net/http"

	"cineseat/internal/shared/utils/fault"
)

var (
	// ErrCartNotFound is returned for unknown cart IDs.
	ErrCartNotFound = fault.New("CART_NOT_FOUND", http.StatusNotFound, "cart not found")

	// ErrCartNotActive is returned when an operation needs an ACTIVE cart but
	// the cart has already completed or been abandoned.
	ErrCartNotActive = fault.New("CART_NOT_ACTIVE", http.StatusConflict, "cart is no longer active")

	// ErrCartMismatch is returned when a cart is presented with a different
	// user or session than it was created for.
	ErrCartMismatch = fault.New("CART_SESSION_MISMATCH", http.StatusConflict, "cart belongs to a different user or session")

	// ErrIntentNotFound is returned for unknown payment intent IDs.
	ErrIntentNotFound = fault.New("NOT_FOUND", http.StatusNotFound, "payment intent not found")

	// ErrNotSucceeded is returned when the provider has not confirmed the
	// payment. The intent stays PENDING and finalize can be retried.
	ErrNotSucceeded = fault.New("NOT_SUCCEEDED", http.StatusPaymentRequired, "payment has not succeeded")

	// ErrHoldExpired is returned when finalize finds the cart's holds lapsed
	// before payment was confirmed. Nothing is issued; the seats go back on
	// the market.
	ErrHoldExpired = fault.New("HOLD_EXPIRED", http.StatusGone, "seat holds expired before payment completed")

	// ErrSeatConflict is returned when a seat of the cart was sold through a
	// different cart. Manual remediation (refund) is expected.
	ErrSeatConflict = fault.New("SEAT_CONFLICT", http.StatusConflict, "seat already sold to another cart")

	// ErrTicketNotFound is returned for unknown ticket IDs.
	ErrTicketNotFound = fault.New("TICKET_NOT_FOUND", http.StatusNotFound, "ticket not found")
)
