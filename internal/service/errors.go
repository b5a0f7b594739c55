package service

import (
	"errors"

	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Domain errors. Handlers map them to status codes with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyPaid       = errors.New("order already paid")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOrderClosed       = errors.New("order is closed")
	ErrDishUnavailable   = errors.New("dish unavailable")
	ErrEmptyCart         = errors.New("cart is empty")

	// Re-exported so callers of this package need not import repository.
	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = repository.ErrForbidden
	ErrDuplicate = repository.ErrDuplicate
)
