package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreTryDecrement(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SetStock("p1", 3)

	require.NoError(t, store.TryDecrement(ctx, "p1", 2))

	stock, err := store.GetStock(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, stock)

	err = store.TryDecrement(ctx, "p1", 2)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, 1, stockErr.Available)

	// A failed decrement leaves stock untouched.
	stock, err = store.GetStock(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, stock)
}

func TestMemoryStoreUnknownProduct(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.ErrorIs(t, store.TryDecrement(ctx, "missing", 1), domain.ErrNotFound)
	require.ErrorIs(t, store.Increment(ctx, "missing", 1), domain.ErrNotFound)
	_, err := store.GetStock(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// With stock N and more than N racing single-unit decrements, exactly N must
// succeed and the rest must fail, leaving stock at zero.
func TestMemoryStoreNoOverselling(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const stock = 50
	const callers = 80
	store.SetStock("p1", stock)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.TryDecrement(ctx, "p1", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		failed++
	}

	require.Equal(t, stock, succeeded)
	require.Equal(t, callers-stock, failed)

	remaining, err := store.GetStock(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}
