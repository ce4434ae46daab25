package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/scoop-shop/internal/core/domain"
)

// Mock CartStore
type mockCartStore struct {
	mu      sync.Mutex
	carts   map[string]domain.Cart
	saves   int
	loadErr error
	saveErr error
	delErr  error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]domain.Cart)}
}

func (m *mockCartStore) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Cart{}, m.loadErr
	}
	return m.carts[sessionID], nil
}

func (m *mockCartStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	if cart.IsEmpty() {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = cart
	return nil
}

func (m *mockCartStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.carts, sessionID)
	return nil
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	err    error
	calls  int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]domain.Order)}
}

func (m *mockOrderRepo) SaveOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &o, nil
}
