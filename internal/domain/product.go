package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Tier        string    `json:"tier,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
