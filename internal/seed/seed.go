package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Tier        string
	Stock       int
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "SKU-OBSIDIAN-MUG",
			Name:        "Obsidian Mug",
			Description: "Matte black ceramic mug",
			PriceCents:  1299,
			Currency:    "USD",
			Tier:        "standard",
			Stock:       120,
		},
		{
			SKU:         "SKU-EMBER-TEE",
			Name:        "Ember Tee",
			Description: "Soft cotton tee, ember print",
			PriceCents:  1999,
			Currency:    "USD",
			Tier:        "standard",
			Stock:       80,
		},
		{
			SKU:         "SKU-MYSTERY-BOX",
			Name:        "Mystery Box",
			Description: "One surprise item, tier sealed until delivery",
			PriceCents:  5000,
			Currency:    "USD",
			Tier:        "mystery",
			Stock:       25,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const productQ = `
INSERT INTO products (sku, name, description, price_cents, currency, tier)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    tier = EXCLUDED.tier
RETURNING id::text
`
	var productID string
	if err := pool.QueryRow(ctx, productQ, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency, p.Tier).Scan(&productID); err != nil {
		return err
	}

	const stockQ = `
INSERT INTO inventory (product_id, stock_count)
VALUES ($1, $2)
ON CONFLICT (product_id) DO UPDATE
SET stock_count = EXCLUDED.stock_count
`
	_, err := pool.Exec(ctx, stockQ, productID, p.Stock)
	return err
}
