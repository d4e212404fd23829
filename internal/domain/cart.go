package domain

import "time"

type Cart struct {
	UserID    string     `json:"userId"`
	Lines     []CartLine `json:"lineItems"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine holds the price snapshot taken when the item was added. The
// snapshot is never re-read from the catalog, so cart totals stay stable
// even when the catalog price changes.
type CartLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Tier           string `json:"tier,omitempty"`
}

// CartTotals is derived from lines on every read, never stored.
type CartTotals struct {
	ItemCount     int   `json:"itemCount"`
	SubtotalCents int64 `json:"subtotalCents"`
}
