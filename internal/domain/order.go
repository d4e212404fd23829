package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

// Order is created once in PENDING by checkout and mutated only by the
// webhook reconciler (or the stale-order sweeper) afterwards. The monetary
// breakdown is fixed at creation and never recomputed.
type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"userId"`
	Lines            []OrderLine `json:"lineItems"`
	SubtotalCents    int64       `json:"subtotalCents"`
	TaxCents         int64       `json:"taxCents"`
	ShippingCents    int64       `json:"shippingCents"`
	TotalCents       int64       `json:"totalCents"`
	Currency         string      `json:"currency"`
	Status           OrderStatus `json:"status"`
	PaymentSessionID string      `json:"-"`
	PaymentIntentID  *string     `json:"-"`
	ShippingAddress  *Address    `json:"shippingAddress,omitempty"`
	StockApplied     bool        `json:"-"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

type OrderLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Tier           string `json:"tier,omitempty"`
}

type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}
