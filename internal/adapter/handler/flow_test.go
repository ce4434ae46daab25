package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/core/service"
)

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func (m *memOrderRepo) SaveOrder(_ context.Context, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	return &o, nil
}

func TestFlow_ConcurrentShoppersAreArchived(t *testing.T) {
	app := setupApp(t)
	repo := &memOrderRepo{orders: make(map[string]domain.Order)}
	archiver := service.NewArchiver(repo, zaptest.NewLogger(t))

	var workers sync.WaitGroup
	for i := 0; i < 3; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			archiver.Run(id, app.checkout.GetOrderQueue())
		}(i)
	}

	const shoppers = 8
	orderIDs := make([]string, shoppers)
	errs := make([]error, shoppers)
	var wg sync.WaitGroup
	for i := 0; i < shoppers; i++ {
		s := app.jsonShopper(t)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orderIDs[i], errs[i] = checkoutFlow(s)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "shopper %d", i)
	}

	app.checkout.Close()
	workers.Wait()

	require.Len(t, repo.orders, shoppers)
	for _, id := range orderIDs {
		order, ok := repo.orders[id]
		require.True(t, ok, "order %s not archived", id)
		assert.Equal(t, 200, order.Total)
		assert.Equal(t, 2, order.Items())
		assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	}
	assert.Empty(t, app.mr.Keys(), "every cart is gone after checkout")
}

// checkoutFlow adds vanilla twice, drops chocolate, removes one vanilla,
// checks out and confirms. It returns the confirmed order id.
func checkoutFlow(s *shopper) (string, error) {
	steps := []struct {
		method, path, contentType, body string
		status                          int
	}{
		{http.MethodPost, "/cart/items", "application/x-www-form-urlencoded", "product_id=1", http.StatusOK},
		{http.MethodPost, "/cart/items", "application/x-www-form-urlencoded", "product_id=1", http.StatusOK},
		{http.MethodPost, "/cart/drop", "text/plain", "2", http.StatusOK},
		{http.MethodPost, "/cart/items/1/remove", "", "", http.StatusOK},
		{http.MethodPost, "/cart/checkout", "", "", http.StatusSeeOther},
		{http.MethodPost, "/payment/confirm", "", "", http.StatusOK},
	}

	var body string
	for _, st := range steps {
		resp, data, err := s.try(st.method, st.path, st.contentType, st.body)
		if err != nil {
			return "", fmt.Errorf("%s %s: %w", st.method, st.path, err)
		}
		if resp.StatusCode != st.status {
			return "", fmt.Errorf("%s %s: status %d, want %d: %s", st.method, st.path, resp.StatusCode, st.status, data)
		}
		body = data
	}

	var conf confirmResponse
	if err := json.Unmarshal([]byte(body), &conf); err != nil {
		return "", fmt.Errorf("decode confirmation: %w", err)
	}
	if conf.OrderID == "" {
		return "", errors.New("confirmation without order id")
	}
	return conf.OrderID, nil
}
