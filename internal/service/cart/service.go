package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
	maxLineQty  int
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (*cartrepo.Envelope, error)
	Save(ctx context.Context, userID string, env cartrepo.Envelope) error
	Delete(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// New builds the cart service. maxLineQty of 0 disables the per-line cap.
func New(repo cartrepo.Repository, productRepo productRepo, maxLineQty int) *Service {
	return &Service{repo: repo, productRepo: productRepo, maxLineQty: maxLineQty}
}

// Get loads the user's cart, migrating older persisted envelopes forward.
// A user with no cart gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	env, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Cart{UserID: userID}, nil
		}
		return nil, err
	}
	lines, err := decodeEnvelope(*env)
	if err != nil {
		return nil, err
	}
	return &domain.Cart{UserID: userID, Lines: lines}, nil
}

// AddItem snapshots the product's current price onto a new line, or
// increments the quantity by one when the product is already in the cart.
// The price snapshot is never refreshed afterwards.
func (s *Service) AddItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errors.New("productId required")
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID != productID {
			continue
		}
		if s.maxLineQty > 0 && cart.Lines[i].Quantity+1 > s.maxLineQty {
			return nil, fmt.Errorf("%w: line %s at %d", domain.ErrQuantityLimit, productID, cart.Lines[i].Quantity)
		}
		cart.Lines[i].Quantity++
		found = true
		break
	}

	if !found {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrProductUnavailable
			}
			return nil, err
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       1,
			Tier:           product.Tier,
		})
	}

	return cart, s.save(ctx, userID, cart)
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line.
// Available stock is deliberately not validated here; the cart is an
// optimistic client-local structure, not a reservation.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if s.maxLineQty > 0 && qty > s.maxLineQty {
		return nil, fmt.Errorf("%w: requested %d", domain.ErrQuantityLimit, qty)
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity = qty
			return cart, s.save(ctx, userID, cart)
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Lines[:0]
	removed := false
	for _, line := range cart.Lines {
		if line.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil, domain.ErrNotFound
	}
	cart.Lines = kept
	return cart, s.save(ctx, userID, cart)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func (s *Service) save(ctx context.Context, userID string, cart *domain.Cart) error {
	env, err := encodeEnvelope(cart.Lines)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, userID, env)
}

// ComputeTotals derives count and subtotal from the lines in one pass. It is
// pure: identical lines always produce identical totals, which is what makes
// checkout snapshotting idempotent.
func ComputeTotals(lines []domain.CartLine) domain.CartTotals {
	var totals domain.CartTotals
	for _, line := range lines {
		totals.ItemCount += line.Quantity
		totals.SubtotalCents += line.UnitPriceCents * int64(line.Quantity)
	}
	return totals
}
