package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart rejects a checkout with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductUnavailable means a cart line references a product that no
	// longer exists in the catalog.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock is wrapped by StockError with product details.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrQuantityLimit means a cart line would exceed the per-line cap.
	ErrQuantityLimit = errors.New("quantity limit exceeded")
	// ErrBadSignature rejects a webhook payload that failed verification.
	ErrBadSignature = errors.New("invalid signature")
	// ErrGateway marks a payment gateway failure as retryable by the caller.
	ErrGateway = errors.New("payment gateway unavailable")
)

// StockError names the offending product and the stock actually available.
type StockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
