package order

import (
	"context"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
)

// Service serves order reads for the confirmation page and runs the two
// operator jobs: the stale-PENDING sweep and the inventory consistency
// report.
type Service struct {
	repo   orderRepo
	logger *log.Logger
}

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	CancelStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	ListPaidMissingStock(ctx context.Context) ([]domain.Order, error)
}

func New(repo orderRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// Get returns the order only to its owner; anyone else sees not-found.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// SweepStale cancels PENDING orders older than ttl. No inventory cleanup is
// needed: PENDING orders never committed any.
func (s *Service) SweepStale(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.repo.CancelStalePending(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Printf("order sweep: cancelled %d stale pending orders", n)
	}
	return n, nil
}

// ReportMissingStock logs every PAID order whose decrement step never
// completed. The report is operator-visible and never auto-corrected.
func (s *Service) ReportMissingStock(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListPaidMissingStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		s.logger.Printf("order consistency: WARNING order %s is PAID but inventory was never decremented (updated %s)",
			o.ID, o.UpdatedAt.Format(time.RFC3339))
	}
	return orders, nil
}
