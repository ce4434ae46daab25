package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/scoop-shop/internal/core/domain"
)

func fillCart(t *testing.T, store *mockCartStore, sessionID string, ids ...int) {
	t.Helper()
	cart := domain.Cart{}
	for _, id := range ids {
		var err error
		cart, err = domain.Apply(cart, domain.DefaultCatalog(), domain.Add(id))
		require.NoError(t, err)
	}
	require.NoError(t, store.Save(context.Background(), sessionID, cart))
}

func TestSummary_EmptyCart(t *testing.T) {
	store := newMockCartStore()
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.Summary(context.Background(), "sess")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSummary_LinesAndTotal(t *testing.T) {
	store := newMockCartStore()
	fillCart(t, store, "sess", 1, 1, 3)
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	defer svc.Close()

	summary, err := svc.Summary(context.Background(), "sess")
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 2)
	assert.Equal(t, 300, summary.Total)
}

func TestConfirm_ClearsCartAndQueuesOrder(t *testing.T) {
	store := newMockCartStore()
	fillCart(t, store, "sess", 2, 2, 4)
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	order, err := svc.Confirm(context.Background(), "sess")
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 300, order.Total)
	assert.Equal(t, 3, order.Items())
	assert.Equal(t, fixed, order.ConfirmedAt)

	cart, err := store.Load(context.Background(), "sess")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	queued := <-svc.GetOrderQueue()
	assert.Equal(t, order.ID, queued.ID)
	assert.Equal(t, "sess", queued.SessionID)

	svc.Close()
}

func TestConfirm_EmptyCart(t *testing.T) {
	store := newMockCartStore()
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.Confirm(context.Background(), "sess")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestConfirm_IsOneWay(t *testing.T) {
	store := newMockCartStore()
	fillCart(t, store, "sess", 1)
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.Confirm(context.Background(), "sess")
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "sess")
	assert.ErrorIs(t, err, ErrEmptyCart)
	_, err = svc.Summary(context.Background(), "sess")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestConfirm_DeleteFailureKeepsCart(t *testing.T) {
	store := newMockCartStore()
	fillCart(t, store, "sess", 1)
	store.delErr = errors.New("redis down")
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.Confirm(context.Background(), "sess")
	require.Error(t, err)

	store.delErr = nil
	cart, err := store.Load(context.Background(), "sess")
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty())
	assert.Len(t, svc.GetOrderQueue(), 0)
}

func TestConfirm_AfterCloseStillSucceeds(t *testing.T) {
	store := newMockCartStore()
	fillCart(t, store, "sess", 1)
	svc := NewCheckoutService(store, 10, zaptest.NewLogger(t))
	svc.Close()
	svc.Close()

	order, err := svc.Confirm(context.Background(), "sess")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
}

func TestConfirm_FullQueueDoesNotBlock(t *testing.T) {
	store := newMockCartStore()
	fillCart(t, store, "first", 1)
	fillCart(t, store, "second", 2)
	svc := NewCheckoutService(store, 1, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.Confirm(context.Background(), "first")
	require.NoError(t, err)

	// nobody drains the queue and the context never expires
	done := make(chan domain.Order, 1)
	go func() {
		order, err := svc.Confirm(context.Background(), "second")
		assert.NoError(t, err)
		done <- order
	}()

	select {
	case order := <-done:
		assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	case <-time.After(time.Second):
		t.Fatal("confirm blocked on a full archive queue")
	}

	assert.Len(t, svc.GetOrderQueue(), 1)
	cart, err := store.Load(context.Background(), "second")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestEnqueue_Full(t *testing.T) {
	svc := NewCheckoutService(newMockCartStore(), 0, zaptest.NewLogger(t))
	defer svc.Close()

	assert.ErrorIs(t, svc.enqueue(domain.Order{ID: "o-1"}), ErrQueueFull)
}

func TestNewCheckoutService_NegativeQueueSize(t *testing.T) {
	svc := NewCheckoutService(newMockCartStore(), -1, zaptest.NewLogger(t))
	defer svc.Close()

	assert.Equal(t, 0, cap(svc.GetOrderQueue()))
}
