package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const orderQ = `
INSERT INTO orders (id, user_id, subtotal_cents, tax_cents, shipping_cents, total_cents, currency, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at
`
	if err := tx.QueryRow(ctx, orderQ,
		o.ID, o.UserID, o.SubtotalCents, o.TaxCents, o.ShippingCents, o.TotalCents, o.Currency, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	const lineQ = `
INSERT INTO order_lines (order_id, product_id, name, unit_price_cents, quantity, tier)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, line := range o.Lines {
		if _, err := tx.Exec(ctx, lineQ,
			o.ID, line.ProductID, line.Name, line.UnitPriceCents, line.Quantity, line.Tier,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const orderColumns = `
id::text, user_id, subtotal_cents, tax_cents, shipping_cents, total_cents, currency, status,
COALESCE(payment_session_id, ''), payment_intent_id, shipping_address, stock_applied, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	return r.fetchOrder(ctx, q, id)
}

func (r *postgresRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE payment_session_id = $1
`
	return r.fetchOrder(ctx, q, sessionID)
}

func (r *postgresRepo) SetPaymentSession(ctx context.Context, orderID, sessionID string) error {
	const q = `
UPDATE orders
SET payment_session_id = $2,
    updated_at = now()
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, orderID, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkPaid flips PENDING to PAID in one conditional statement. The returned
// boolean is true only when this call changed the row, so concurrent or
// replayed deliveries of the same event see false and skip the side effects.
func (r *postgresRepo) MarkPaid(ctx context.Context, orderID, paymentIntentID string, addr *domain.Address) (bool, error) {
	var addrJSON []byte
	if addr != nil {
		var err error
		addrJSON, err = json.Marshal(addr)
		if err != nil {
			return false, err
		}
	}

	const q = `
UPDATE orders
SET status = 'PAID',
    payment_intent_id = NULLIF($2, ''),
    shipping_address = COALESCE($3, shipping_address),
    updated_at = now()
WHERE id = $1 AND status = 'PENDING'
`
	cmd, err := r.pool.Exec(ctx, q, orderID, paymentIntentID, addrJSON)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresRepo) MarkCancelled(ctx context.Context, orderID string) (bool, error) {
	const q = `
UPDATE orders
SET status = 'CANCELLED',
    updated_at = now()
WHERE id = $1 AND status = 'PENDING'
`
	cmd, err := r.pool.Exec(ctx, q, orderID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresRepo) MarkStockApplied(ctx context.Context, orderID string) error {
	const q = `
UPDATE orders
SET stock_applied = TRUE,
    updated_at = now()
WHERE id = $1
`
	_, err := r.pool.Exec(ctx, q, orderID)
	return err
}

// CancelStalePending sweeps PENDING orders older than the cutoff. Inventory
// is untouched because PENDING orders never committed any.
func (r *postgresRepo) CancelStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	const q = `
UPDATE orders
SET status = 'CANCELLED',
    updated_at = now()
WHERE status = 'PENDING' AND created_at < $1
`
	cmd, err := r.pool.Exec(ctx, q, olderThan)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ListPaidMissingStock surfaces PAID orders whose inventory decrement never
// completed (crash between the status transition and the decrement).
func (r *postgresRepo) ListPaidMissingStock(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'PAID' AND stock_applied = FALSE
ORDER BY updated_at ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, arg any) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQ = `
SELECT product_id::text, name, unit_price_cents, quantity, tier
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, linesQ, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.UnitPriceCents, &line.Quantity, &line.Tier); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var addrJSON []byte
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.SubtotalCents,
		&o.TaxCents,
		&o.ShippingCents,
		&o.TotalCents,
		&o.Currency,
		&o.Status,
		&o.PaymentSessionID,
		&o.PaymentIntentID,
		&addrJSON,
		&o.StockApplied,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(addrJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return nil, err
		}
		o.ShippingAddress = &addr
	}
	return &o, nil
}
