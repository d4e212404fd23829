// Package payment reconciles asynchronous payment notifications with order
// and inventory state. Deliveries are at-least-once and possibly out of
// order; the conditional status transition is the idempotency gate.
package payment

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/gateway"
)

// ErrMalformed marks a payload that verified but could not be decoded. The
// sender gets a 4xx and should not retry.
var ErrMalformed = errors.New("malformed event payload")

type Service struct {
	orders    orderRepo
	inventory inventoryRepo
	publisher eventPublisher
	secret    string
	logger    *log.Logger
	now       func() time.Time
}

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID, paymentIntentID string, addr *domain.Address) (bool, error)
	MarkCancelled(ctx context.Context, orderID string) (bool, error)
	MarkStockApplied(ctx context.Context, orderID string) error
}

type inventoryRepo interface {
	TryDecrement(ctx context.Context, productID string, qty int) error
}

type eventPublisher interface {
	Publish(event events.OrderEvent) error
}

func New(orders orderRepo, inventory inventoryRepo, publisher eventPublisher, secret string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:    orders,
		inventory: inventory,
		publisher: publisher,
		secret:    secret,
		logger:    logger,
		now:       time.Now,
	}
}

// Process verifies, decodes, and applies one webhook delivery.
// Returned errors map to responses: domain.ErrBadSignature and ErrMalformed
// are rejections the sender must not retry; anything else is an internal
// failure and the sender should redeliver later.
func (s *Service) Process(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := gateway.VerifySignature(s.secret, payload, signatureHeader, s.now()); err != nil {
		s.logger.Printf("payment: SECURITY rejected unverified event: %v", err)
		return err
	}

	ev, err := gateway.ParseEvent(payload)
	if err != nil {
		return errors.Join(ErrMalformed, err)
	}

	order, err := s.resolveOrder(ctx, ev)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Redelivery cannot help an event we can't attribute; ack it.
			s.logger.Printf("payment: event %s references unknown order (session=%s), ignoring", ev.EventID, ev.SessionID)
			return nil
		}
		return err
	}

	switch ev.Outcome {
	case gateway.OutcomeCompleted:
		return s.applyPaid(ctx, order, ev)
	case gateway.OutcomeExpired, gateway.OutcomeFailed:
		return s.applyCancelled(ctx, order, ev)
	case gateway.OutcomeUnknown:
		// Acknowledged so the sender stops retrying an event we
		// intentionally ignore.
		s.logger.Printf("payment: ignoring event %s type=%s order=%s", ev.EventID, ev.Type, order.ID)
		return nil
	default:
		s.logger.Printf("payment: unhandled outcome %v for event %s", ev.Outcome, ev.EventID)
		return nil
	}
}

func (s *Service) resolveOrder(ctx context.Context, ev *gateway.Event) (*domain.Order, error) {
	if ev.OrderID != "" {
		return s.orders.GetByID(ctx, ev.OrderID)
	}
	if ev.SessionID != "" {
		return s.orders.GetBySessionID(ctx, ev.SessionID)
	}
	return nil, domain.ErrNotFound
}

// applyPaid performs PENDING->PAID and then the inventory decrement, in that
// fixed order. The decrement only runs when the conditional update actually
// changed the row, so a replayed event or a racing duplicate can never
// decrement twice.
func (s *Service) applyPaid(ctx context.Context, order *domain.Order, ev *gateway.Event) error {
	changed, err := s.orders.MarkPaid(ctx, order.ID, ev.PaymentIntentID, ev.ShippingAddress)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Printf("payment: event %s for order %s in %s, no transition", ev.EventID, order.ID, order.Status)
		return nil
	}

	applied := true
	for _, line := range order.Lines {
		if err := s.inventory.TryDecrement(ctx, line.ProductID, line.Quantity); err != nil {
			// The order is already PAID; stock_applied stays false and the
			// consistency job surfaces this to operators.
			s.logger.Printf("payment: CONSISTENCY order %s paid but decrement failed for %s x%d: %v",
				order.ID, line.ProductID, line.Quantity, err)
			applied = false
		}
	}
	if applied {
		if err := s.orders.MarkStockApplied(ctx, order.ID); err != nil {
			s.logger.Printf("payment: mark stock applied order=%s: %v", order.ID, err)
		}
	}

	s.publish(events.OrderEvent{
		Type:       "order.paid",
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
	})
	s.logger.Printf("payment: order %s paid (event %s)", order.ID, ev.EventID)
	return nil
}

func (s *Service) applyCancelled(ctx context.Context, order *domain.Order, ev *gateway.Event) error {
	changed, err := s.orders.MarkCancelled(ctx, order.ID)
	if err != nil {
		return err
	}
	if !changed {
		// A "failed" arriving after "succeeded" lands here: terminal states
		// never regress.
		s.logger.Printf("payment: event %s for order %s in %s, no transition", ev.EventID, order.ID, order.Status)
		return nil
	}

	s.publish(events.OrderEvent{
		Type:       "order.cancelled",
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
	})
	s.logger.Printf("payment: order %s cancelled (event %s)", order.ID, ev.EventID)
	return nil
}

func (s *Service) publish(ev events.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ev); err != nil {
		s.logger.Printf("payment: publish %s order=%s: %v", ev.Type, ev.OrderID, err)
	}
}
