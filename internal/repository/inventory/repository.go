package inventory

import (
	"context"
)

// Repository is the authoritative stock store. TryDecrement must be atomic
// with respect to concurrent callers for the same product: the decrement and
// the sufficiency check happen in a single conditional operation, never as a
// read followed by a write.
type Repository interface {
	TryDecrement(ctx context.Context, productID string, qty int) error
	Increment(ctx context.Context, productID string, qty int) error
	GetStock(ctx context.Context, productID string) (int, error)
}
