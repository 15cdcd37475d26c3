package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	redisclient "github.com/angelmondragon/aquaflow-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AdminSessionKey(tokenID string) string
}

// Manager tracks issued admin sessions so tokens can be revoked before expiry.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Lookup(ctx context.Context, tokenID string) (string, bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.AdminConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("admin session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: cfg.SessionTTL}, nil
}

// Create records the session for tokenID with the same fixed TTL as the token.
func (m *Manager) Create(ctx context.Context, tokenID, username string) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	return m.store.Set(ctx, m.keyer.AdminSessionKey(tokenID), username, m.ttl)
}

// Lookup returns the username bound to tokenID and whether the session is still live.
func (m *Manager) Lookup(ctx context.Context, tokenID string) (string, bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return "", false, fmt.Errorf("token id is required")
	}
	username, err := m.store.Get(ctx, m.keyer.AdminSessionKey(tokenID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return username, true, nil
}

// Revoke deletes the session tied to tokenID.
func (m *Manager) Revoke(ctx context.Context, tokenID string) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	return m.store.Del(ctx, m.keyer.AdminSessionKey(tokenID))
}
