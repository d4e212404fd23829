package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"github.com/google/uuid"
)

// Pricing holds the monetary knobs applied at checkout time.
type Pricing struct {
	TaxRateBps            int64
	FreeShippingThreshold int64
	ShippingFlatCents     int64
	Currency              string
	SuccessURL            string
	CancelURL             string
}

type Service struct {
	products  productRepo
	inventory inventoryRepo
	orders    orderRepo
	carts     cartClearer
	gateway   gateway.Client
	pricing   Pricing
	logger    *log.Logger
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type inventoryRepo interface {
	GetStock(ctx context.Context, productID string) (int, error)
}

type orderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	SetPaymentSession(ctx context.Context, orderID, sessionID string) error
}

type cartClearer interface {
	Clear(ctx context.Context, userID string) error
}

func New(products productRepo, inventory inventoryRepo, orders orderRepo, carts cartClearer, gw gateway.Client, pricing Pricing, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		products:  products,
		inventory: inventory,
		orders:    orders,
		carts:     carts,
		gateway:   gw,
		pricing:   pricing,
		logger:    logger,
	}
}

// Item is one line of the client's cart snapshot. Only the product reference
// and quantity are trusted; prices are re-read from the catalog.
type Item struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type Result struct {
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl"`
}

// BeginCheckout validates the snapshot against the catalog and current
// stock, creates a PENDING order with the computed breakdown, opens a payment
// session, and binds the session id to the order. The stock check is
// informational only; nothing is reserved until payment confirms.
func (s *Service) BeginCheckout(ctx context.Context, userID string, items []Item) (*Result, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]domain.OrderLine, 0, len(items))
	var subtotal int64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for product %s", item.ProductID)
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, item.ProductID)
			}
			return nil, err
		}

		stock, err := s.inventory.GetStock(ctx, product.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if item.Quantity > stock {
			return nil, &domain.StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: item.Quantity,
				Available: stock,
			}
		}

		// Current catalog price, not the client's stale snapshot.
		lines = append(lines, domain.OrderLine{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       item.Quantity,
			Tier:           product.Tier,
		})
		subtotal += product.PriceCents * int64(item.Quantity)
	}

	tax := subtotal * s.pricing.TaxRateBps / 10000
	shipping := s.pricing.ShippingFlatCents
	if subtotal >= s.pricing.FreeShippingThreshold {
		shipping = 0
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Lines:         lines,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: shipping,
		TotalCents:    subtotal + tax + shipping,
		Currency:      s.pricing.Currency,
		Status:        domain.OrderPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	sessionLines := make([]gateway.SessionLine, 0, len(lines))
	for _, line := range lines {
		sessionLines = append(sessionLines, gateway.SessionLine{
			Name:            line.Name,
			UnitAmountCents: line.UnitPriceCents,
			Quantity:        line.Quantity,
		})
	}
	if tax > 0 {
		sessionLines = append(sessionLines, gateway.SessionLine{Name: "Tax", UnitAmountCents: tax, Quantity: 1})
	}
	if shipping > 0 {
		sessionLines = append(sessionLines, gateway.SessionLine{Name: "Shipping", UnitAmountCents: shipping, Quantity: 1})
	}

	// A failure from here on leaves an orphaned PENDING order. That is fine:
	// PENDING carries no inventory commitment and the sweeper cancels it.
	session, err := s.gateway.CreateSession(ctx, gateway.CreateSessionInput{
		Lines:      sessionLines,
		Currency:   order.Currency,
		SuccessURL: s.pricing.SuccessURL,
		CancelURL:  s.pricing.CancelURL,
		Metadata: map[string]string{
			"orderId": order.ID,
			"userId":  userID,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		return nil, fmt.Errorf("bind payment session: %w", err)
	}

	if s.carts != nil {
		if err := s.carts.Clear(ctx, userID); err != nil {
			s.logger.Printf("checkout: clear cart user=%s: %v", userID, err)
		}
	}

	s.logger.Printf("checkout: order=%s user=%s total=%d session=%s", order.ID, userID, order.TotalCents, session.ID)
	return &Result{OrderID: order.ID, RedirectURL: session.RedirectURL}, nil
}
