package inventory

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore keeps stock counts in memory behind a mutex. Used by tests and
// local runs without postgres.
type MemoryStore struct {
	mu     sync.Mutex
	stocks map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stocks: make(map[string]int)}
}

// SetStock seeds or overwrites the stock count for a product.
func (s *MemoryStore) SetStock(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[productID] = qty
}

func (s *MemoryStore) TryDecrement(_ context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock, ok := s.stocks[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if stock < qty {
		return &domain.StockError{ProductID: productID, Requested: qty, Available: stock}
	}
	s.stocks[productID] = stock - qty
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stocks[productID]; !ok {
		return domain.ErrNotFound
	}
	s.stocks[productID] += qty
	return nil
}

func (s *MemoryStore) GetStock(_ context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock, ok := s.stocks[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return stock, nil
}
