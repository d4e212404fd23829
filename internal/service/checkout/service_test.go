package checkout

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/gateway"
)

type stubProducts struct {
	products map[string]*domain.Product
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubInventory struct {
	stock map[string]int
}

func (s *stubInventory) GetStock(_ context.Context, productID string) (int, error) {
	stock, ok := s.stock[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return stock, nil
}

type stubOrders struct {
	created       *domain.Order
	createErr     error
	sessionOrder  string
	sessionID     string
	setSessionErr error
}

func (s *stubOrders) Create(_ context.Context, o *domain.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = o
	return nil
}

func (s *stubOrders) SetPaymentSession(_ context.Context, orderID, sessionID string) error {
	if s.setSessionErr != nil {
		return s.setSessionErr
	}
	s.sessionOrder = orderID
	s.sessionID = sessionID
	return nil
}

type stubGateway struct {
	session *gateway.Session
	err     error
	lastIn  gateway.CreateSessionInput
	calls   int
}

func (s *stubGateway) CreateSession(_ context.Context, in gateway.CreateSessionInput) (*gateway.Session, error) {
	s.calls++
	s.lastIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type stubCarts struct {
	cleared []string
}

func (s *stubCarts) Clear(_ context.Context, userID string) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

func testPricing() Pricing {
	return Pricing{
		TaxRateBps:            1000,
		FreeShippingThreshold: 10000,
		ShippingFlatCents:     500,
		Currency:              "USD",
		SuccessURL:            "https://shop.test/success",
		CancelURL:             "https://shop.test/cancel",
	}
}

func newFixture() (*Service, *stubOrders, *stubGateway, *stubCarts) {
	products := &stubProducts{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Obsidian Mug", PriceCents: 5000, Tier: "standard"},
		"p2": {ID: "p2", Name: "Mystery Box", PriceCents: 2000, Tier: "mystery"},
	}}
	inv := &stubInventory{stock: map[string]int{"p1": 10, "p2": 1}}
	orders := &stubOrders{}
	gw := &stubGateway{session: &gateway.Session{ID: "sess_1", RedirectURL: "https://pay.test/sess_1"}}
	carts := &stubCarts{}
	return New(products, inv, orders, carts, gw, testPricing(), nil), orders, gw, carts
}

func TestBeginCheckoutHappyPath(t *testing.T) {
	svc, orders, gw, carts := newFixture()

	res, err := svc.BeginCheckout(context.Background(), "u1", []Item{{ProductID: "p1", Quantity: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RedirectURL != "https://pay.test/sess_1" {
		t.Fatalf("unexpected redirect: %s", res.RedirectURL)
	}

	o := orders.created
	if o == nil {
		t.Fatalf("expected order to be created")
	}
	if o.Status != domain.OrderPending {
		t.Fatalf("expected PENDING, got %s", o.Status)
	}
	if o.SubtotalCents != 10000 || o.TaxCents != 1000 || o.ShippingCents != 0 || o.TotalCents != 11000 {
		t.Fatalf("unexpected breakdown: %+v", o)
	}
	if o.TotalCents != o.SubtotalCents+o.TaxCents+o.ShippingCents {
		t.Fatalf("monetary invariant violated: %+v", o)
	}

	if orders.sessionOrder != o.ID || orders.sessionID != "sess_1" {
		t.Fatalf("session not bound to order: %+v", orders)
	}
	if gw.lastIn.Metadata["orderId"] != o.ID || gw.lastIn.Metadata["userId"] != "u1" {
		t.Fatalf("metadata missing order/user: %+v", gw.lastIn.Metadata)
	}
	if len(carts.cleared) != 1 || carts.cleared[0] != "u1" {
		t.Fatalf("expected cart cleared for u1, got %v", carts.cleared)
	}
}

func TestBeginCheckoutItemizedSessionLines(t *testing.T) {
	svc, _, gw, _ := newFixture()

	// Subtotal below the free-shipping threshold: tax and shipping become
	// their own session lines.
	_, err := svc.BeginCheckout(context.Background(), "u1", []Item{{ProductID: "p2", Quantity: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.lastIn.Lines) != 3 {
		t.Fatalf("expected product+tax+shipping lines, got %+v", gw.lastIn.Lines)
	}
	if gw.lastIn.Lines[0].UnitAmountCents != 2000 || gw.lastIn.Lines[1].UnitAmountCents != 200 || gw.lastIn.Lines[2].UnitAmountCents != 500 {
		t.Fatalf("unexpected session amounts: %+v", gw.lastIn.Lines)
	}
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	svc, orders, _, _ := newFixture()

	_, err := svc.BeginCheckout(context.Background(), "u1", nil)
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
	if orders.created != nil {
		t.Fatalf("no order should be created")
	}
}

func TestBeginCheckoutInsufficientStock(t *testing.T) {
	svc, orders, gw, _ := newFixture()

	_, err := svc.BeginCheckout(context.Background(), "u1", []Item{{ProductID: "p2", Quantity: 2}})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %T", err)
	}
	if stockErr.Name != "Mystery Box" || stockErr.Available != 1 {
		t.Fatalf("error should name the product and current stock: %+v", stockErr)
	}

	if orders.created != nil || gw.calls != 0 {
		t.Fatalf("no order or session on stock failure")
	}
}

func TestBeginCheckoutProductGone(t *testing.T) {
	svc, orders, _, _ := newFixture()

	_, err := svc.BeginCheckout(context.Background(), "u1", []Item{{ProductID: "ghost", Quantity: 1}})
	if !errors.Is(err, domain.ErrProductUnavailable) {
		t.Fatalf("expected product unavailable, got %v", err)
	}
	if orders.created != nil {
		t.Fatalf("no order should be created")
	}
}

func TestBeginCheckoutGatewayFailureLeavesPendingOrder(t *testing.T) {
	svc, orders, gw, carts := newFixture()
	gw.err = domain.ErrGateway

	_, err := svc.BeginCheckout(context.Background(), "u1", []Item{{ProductID: "p1", Quantity: 1}})
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	// The orphaned PENDING order is deliberate; the sweeper reaps it.
	if orders.created == nil || orders.created.Status != domain.OrderPending {
		t.Fatalf("expected a PENDING order to remain")
	}
	if orders.sessionID != "" {
		t.Fatalf("no session should be bound")
	}
	if len(carts.cleared) != 0 {
		t.Fatalf("cart must survive a failed checkout")
	}
}
