package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/domain"
)

const (
	cartKeyPrefix  = "cart:"
	DefaultCartTTL = 24 * time.Hour
)

// RedisCartStore keeps one JSON snapshot per session under cart:<session id>.
// The snapshot is a JSON array of {id, name, price, image, quantity}.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCartStore{client: client, ttl: ttl, log: log}
}

func (r *RedisCartStore) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("redis get cart: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		r.log.Warn("discarding malformed cart snapshot",
			zap.String("session_id", sessionID),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return domain.Cart{}, nil
	}

	return domain.Normalize(domain.Cart{Lines: lines}), nil
}

func (r *RedisCartStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	if cart.IsEmpty() {
		return r.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisCartStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}
