package inventory

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// TryDecrement runs the sufficiency check and the decrement as one
// conditional statement, so two concurrent calls can never jointly oversell.
func (r *postgresRepo) TryDecrement(ctx context.Context, productID string, qty int) error {
	const q = `
UPDATE inventory
SET stock_count = stock_count - $2
WHERE product_id = $1 AND stock_count >= $2
`
	cmd, err := r.pool.Exec(ctx, q, productID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	// Distinguish a missing product from an insufficient balance.
	stock, err := r.GetStock(ctx, productID)
	if err != nil {
		return err
	}
	return &domain.StockError{ProductID: productID, Requested: qty, Available: stock}
}

func (r *postgresRepo) Increment(ctx context.Context, productID string, qty int) error {
	const q = `
UPDATE inventory
SET stock_count = stock_count + $2
WHERE product_id = $1
`
	cmd, err := r.pool.Exec(ctx, q, productID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetStock(ctx context.Context, productID string) (int, error) {
	const q = `
SELECT stock_count
FROM inventory
WHERE product_id = $1
`
	var stock int
	if err := r.pool.QueryRow(ctx, q, productID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return stock, nil
}
