package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/port"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrQueueClosed = errors.New("order queue closed")
	ErrQueueFull   = errors.New("order queue full")
)

// Summary is the read-only view of a cart on the payment page.
type Summary struct {
	Lines []domain.CartLine
	Total int
}

type CheckoutService struct {
	store      port.CartStore
	log        *zap.Logger
	now        func() time.Time
	orderQueue chan domain.Order

	mu     sync.RWMutex
	closed bool
}

func NewCheckoutService(store port.CartStore, queueSize int, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &CheckoutService{
		store:      store,
		log:        log,
		now:        time.Now,
		orderQueue: make(chan domain.Order, queueSize),
	}
}

// Summary returns ErrEmptyCart when there is nothing to pay for; callers
// send the shopper back to the catalog in that case.
func (s *CheckoutService) Summary(ctx context.Context, sessionID string) (Summary, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return Summary{}, ErrEmptyCart
	}
	return Summary{Lines: cart.Lines, Total: domain.Total(cart)}, nil
}

// Confirm turns the session's cart into a confirmed order and clears the
// cart. There is no way back: once the cart is deleted the order is handed
// to the archive queue and the shopper only sees the confirmation.
func (s *CheckoutService) Confirm(ctx context.Context, sessionID string) (domain.Order, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return domain.Order{}, ErrEmptyCart
	}

	now := s.now()
	order := domain.Order{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Lines:     cart.Lines,
		Total:     domain.Total(cart),
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return domain.Order{}, fmt.Errorf("clear cart: %w", err)
	}
	order.Status = domain.OrderStatusConfirmed
	order.ConfirmedAt = now

	s.log.Info("order confirmed",
		zap.String("order_id", order.ID),
		zap.String("session_id", sessionID),
		zap.Int("items", order.Items()),
		zap.Int("total", order.Total),
	)

	if err := s.enqueue(order); err != nil {
		// the shopper's checkout already happened; only the archive misses it
		s.log.Error("order not archived", zap.String("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

// enqueue never waits for the archive: a full queue drops the record.
func (s *CheckoutService) enqueue(order domain.Order) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrQueueClosed
	}

	select {
	case s.orderQueue <- order:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *CheckoutService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

func (s *CheckoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.orderQueue)
	}
}
