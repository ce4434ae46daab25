package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/port"
)

// Outcome tells the caller whether a mutation changed the cart.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	// OutcomeIgnored: the action referenced an unknown product or a line
	// that is not in the cart. The cart is unchanged.
	OutcomeIgnored
)

func (o Outcome) String() string {
	if o == OutcomeIgnored {
		return "ignored"
	}
	return "applied"
}

type CartService struct {
	store   port.CartStore
	catalog domain.Catalog
	log     *zap.Logger
}

func NewCartService(store port.CartStore, catalog domain.Catalog, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{store: store, catalog: catalog, log: log}
}

func (s *CartService) Catalog() domain.Catalog {
	return s.catalog
}

func (s *CartService) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) Add(ctx context.Context, sessionID string, productID int) (domain.Cart, Outcome, error) {
	return s.mutate(ctx, sessionID, domain.Add(productID))
}

func (s *CartService) Remove(ctx context.Context, sessionID string, productID int) (domain.Cart, Outcome, error) {
	return s.mutate(ctx, sessionID, domain.Remove(productID))
}

func (s *CartService) ChangeQuantity(ctx context.Context, sessionID string, productID, delta int) (domain.Cart, Outcome, error) {
	return s.mutate(ctx, sessionID, domain.ChangeQuantity(productID, delta))
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.log.Debug("cart cleared", zap.String("session_id", sessionID))
	return nil
}

// mutate is load, apply, save. The whole snapshot is rewritten on every
// applied action; ignored actions do not touch the store.
func (s *CartService) mutate(ctx context.Context, sessionID string, action domain.Action) (domain.Cart, Outcome, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, OutcomeApplied, err
	}

	next, err := domain.Apply(cart, s.catalog, action)
	if errors.Is(err, domain.ErrUnknownProduct) || errors.Is(err, domain.ErrNotInCart) {
		s.log.Warn("cart action ignored",
			zap.String("session_id", sessionID),
			zap.String("action", string(action.Kind)),
			zap.Int("product_id", action.ProductID),
			zap.Error(err),
		)
		return cart, OutcomeIgnored, nil
	}
	if err != nil {
		return cart, OutcomeApplied, err
	}

	if err := s.store.Save(ctx, sessionID, next); err != nil {
		return cart, OutcomeApplied, fmt.Errorf("save cart: %w", err)
	}

	s.log.Debug("cart updated",
		zap.String("session_id", sessionID),
		zap.String("action", string(action.Kind)),
		zap.Int("product_id", action.ProductID),
		zap.Int("lines", len(next.Lines)),
		zap.Int("total", domain.Total(next)),
	)
	return next, OutcomeApplied, nil
}
