package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the durable home of carts.
type Store interface {
	// Get returns nil and no error when the cart does not exist.
	Get(ctx context.Context, cartID string) (*Cart, error)
	Put(ctx context.Context, cartID string, c *Cart) error
	Delete(ctx context.Context, cartID string) error
}

// Mirror is the per-request cookie copy of the cart.
type Mirror interface {
	// Enabled reports whether the customer granted necessary-cookie consent.
	Enabled() bool
	// Load returns the mirrored cart when a valid cookie is present.
	Load() (*Mirrored, bool)
	Save(m Mirrored) error
	Clear()
}

type kv interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(cartID string) string
}

// RedisStore keeps carts as JSON documents whose TTL is refreshed on every write.
type RedisStore struct {
	client kv
	ttl    time.Duration
	isNil  func(error) bool
}

// NewRedisStore builds a store over the redis client helpers.
func NewRedisStore(client kv, ttl time.Duration, isNil func(error) bool) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	if isNil == nil {
		return nil, fmt.Errorf("missing-key predicate required")
	}
	return &RedisStore{client: client, ttl: ttl, isNil: isNil}, nil
}

func (s *RedisStore) Get(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := s.client.GetBytes(ctx, s.client.CartKey(cartID))
	if err != nil {
		if s.isNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Put(ctx context.Context, cartID string, c *Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.client.Set(ctx, s.client.CartKey(cartID), raw, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, s.client.CartKey(cartID))
}
