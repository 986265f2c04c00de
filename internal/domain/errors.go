// backend-go/internal/domain/errors.go
package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidQuantity  = errors.New("quantity must be a non-negative integer")
	ErrInvalidThreshold = errors.New("threshold must be a non-negative integer")
	ErrNoRows           = errors.New("order must keep at least one row with quantity > 0")
	ErrOrderCancelled   = errors.New("order is cancelled")
	ErrAlreadyStockedIn = errors.New("order is already stocked in")
)
