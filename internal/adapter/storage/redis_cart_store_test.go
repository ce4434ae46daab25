package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/scoop-shop/internal/core/domain"
)

func setupCartStore(t *testing.T) (*RedisCartStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCartStore(client, time.Hour, zaptest.NewLogger(t)), mr
}

func sampleCart() domain.Cart {
	return domain.Cart{Lines: []domain.CartLine{
		{ProductID: 1, Name: "Vanilla", Price: 100, Image: "images/vanila.jpg", Quantity: 2},
		{ProductID: 4, Name: "Mint", Price: 100, Image: "images/mint.jpg", Quantity: 1},
	}}
}

func TestLoad_MissingKeyIsEmptyCart(t *testing.T) {
	store, _ := setupCartStore(t)

	cart, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSaveThenLoad(t *testing.T) {
	store, _ := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))

	cart, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sampleCart(), cart)
}

func TestSave_SnapshotLayout(t *testing.T) {
	store, mr := setupCartStore(t)

	require.NoError(t, store.Save(context.Background(), "sess-1", sampleCart()))

	raw, err := mr.Get("cart:sess-1")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	require.Len(t, records, 2)
	assert.Equal(t, float64(1), records[0]["id"])
	assert.Equal(t, "Vanilla", records[0]["name"])
	assert.Equal(t, float64(100), records[0]["price"])
	assert.Equal(t, "images/vanila.jpg", records[0]["image"])
	assert.Equal(t, float64(2), records[0]["quantity"])
}

func TestSave_RefreshesTTL(t *testing.T) {
	store, mr := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))

	assert.Equal(t, time.Hour, mr.TTL("cart:sess-1"))
}

func TestSave_ExpiredSessionLoadsEmpty(t *testing.T) {
	store, mr := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))
	mr.FastForward(2 * time.Hour)

	cart, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSave_EmptyCartDeletesKey(t *testing.T) {
	store, mr := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))
	require.NoError(t, store.Save(ctx, "sess-1", domain.Cart{}))

	assert.False(t, mr.Exists("cart:sess-1"))
}

func TestLoad_MalformedSnapshotIsEmptyCart(t *testing.T) {
	store, mr := setupCartStore(t)

	require.NoError(t, mr.Set("cart:sess-1", `[{"id":1,"name":"Vani`))

	cart, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestLoad_DropsInvalidLines(t *testing.T) {
	store, mr := setupCartStore(t)

	require.NoError(t, mr.Set("cart:sess-1",
		`[{"id":1,"name":"Vanilla","price":100,"quantity":0},{"id":2,"name":"Chocolate","price":100,"quantity":3}]`))

	cart, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].ProductID)
}

func TestDelete(t *testing.T) {
	store, mr := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))
	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.False(t, mr.Exists("cart:sess-1"))

	// deleting again is not an error
	assert.NoError(t, store.Delete(ctx, "sess-1"))

	cart, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))

	other, err := store.Load(ctx, "sess-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestLoad_RedisDown(t *testing.T) {
	store, mr := setupCartStore(t)
	mr.Close()

	_, err := store.Load(context.Background(), "sess-1")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}

func TestCartKey_Format(t *testing.T) {
	assert.Equal(t, "cart:abc", cartKey("abc"))
}
