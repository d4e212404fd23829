package cart

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

func (r *postgresRepo) Get(ctx context.Context, userID string) (*Envelope, error) {
	const q = `
SELECT version, payload
FROM carts
WHERE user_id = $1
`
	var env Envelope
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&env.Version, &env.Payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &env, nil
}

func (r *postgresRepo) Save(ctx context.Context, userID string, env Envelope) error {
	const q = `
INSERT INTO carts (user_id, version, payload, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id) DO UPDATE
SET version = EXCLUDED.version,
    payload = EXCLUDED.payload,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, userID, env.Version, []byte(env.Payload))
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, userID string) error {
	const q = `
DELETE FROM carts
WHERE user_id = $1
`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
