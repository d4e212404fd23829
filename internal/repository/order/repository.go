package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// Repository persists orders. The status transitions are conditional
// single-statement updates keyed on the current status: the boolean result
// reports whether this caller performed the transition, which is what makes
// a replayed webhook delivery a no-op.
type Repository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	SetPaymentSession(ctx context.Context, orderID, sessionID string) error
	MarkPaid(ctx context.Context, orderID, paymentIntentID string, addr *domain.Address) (bool, error)
	MarkCancelled(ctx context.Context, orderID string) (bool, error)
	MarkStockApplied(ctx context.Context, orderID string) error
	CancelStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	ListPaidMissingStock(ctx context.Context) ([]domain.Order, error)
}
