package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	pkgredis "github.com/fooddash/fooddash-backend/pkg/redis"
)

// PersistenceStrategy stores the complete item list for a cart. Implementations
// must treat an absent cart as an empty one.
type PersistenceStrategy interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Clear(ctx context.Context) error
}

// MemoryStrategy keeps the cart in process memory. Used in tests and as the
// fallback when no durable backend is configured.
type MemoryStrategy struct {
	items []LineItem
}

func NewMemoryStrategy() *MemoryStrategy {
	return &MemoryStrategy{}
}

func (m *MemoryStrategy) Load(_ context.Context) ([]LineItem, error) {
	return append([]LineItem(nil), m.items...), nil
}

func (m *MemoryStrategy) Save(_ context.Context, items []LineItem) error {
	m.items = append([]LineItem(nil), items...)
	return nil
}

func (m *MemoryStrategy) Clear(_ context.Context) error {
	m.items = nil
	return nil
}

// FileStrategy persists the cart as a JSON document on disk.
type FileStrategy struct {
	path string
}

func NewFileStrategy(path string) (*FileStrategy, error) {
	if path == "" {
		return nil, errors.New("cart file path is required")
	}
	return &FileStrategy{path: path}, nil
}

func (f *FileStrategy) Load(_ context.Context) ([]LineItem, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cart file: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding cart file: %w", err)
	}
	return items, nil
}

func (f *FileStrategy) Save(_ context.Context, items []LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing cart file: %w", err)
	}
	return nil
}

func (f *FileStrategy) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cart file: %w", err)
	}
	return nil
}

// RedisCart is the subset of the redis client the cart needs.
type RedisCart interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(storageKey, token string) string
}

// RedisStrategy persists one cart token's items in Redis with a sliding TTL.
type RedisStrategy struct {
	client RedisCart
	key    string
	ttl    time.Duration
}

func NewRedisStrategy(client RedisCart, storageKey, token string, ttl time.Duration) (*RedisStrategy, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if token == "" {
		return nil, errors.New("cart token is required")
	}
	return &RedisStrategy{
		client: client,
		key:    client.CartKey(storageKey, token),
		ttl:    ttl,
	}, nil
}

func (r *RedisStrategy) Load(ctx context.Context) ([]LineItem, error) {
	raw, err := r.client.Get(ctx, r.key)
	if err != nil {
		if pkgredis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart from redis: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding cart payload: %w", err)
	}
	return items, nil
}

func (r *RedisStrategy) Save(ctx context.Context, items []LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := r.client.Set(ctx, r.key, string(raw), r.ttl); err != nil {
		return fmt.Errorf("saving cart to redis: %w", err)
	}
	return nil
}

func (r *RedisStrategy) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key); err != nil {
		return fmt.Errorf("clearing cart in redis: %w", err)
	}
	return nil
}
