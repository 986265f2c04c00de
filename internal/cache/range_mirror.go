package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/optiqo/lenshop/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

// RangeMirror is the cache leg of the power-range two-phase write: a
// product's saved range is mirrored here so grid screens can render
// without a database round trip. The database stays the source of truth;
// a failed mirror write is reported, not fatal.
type RangeMirror interface {
	Set(ctx context.Context, productID int64, powerRange []string) error
	Get(ctx context.Context, productID int64) ([]string, bool, error)
}

type redisRangeMirror struct {
	client *redis.Client
}

type noopRangeMirror struct{}

func NewRangeMirror(cfg config.CacheConfig) (RangeMirror, error) {
	if !cfg.Enabled {
		return &noopRangeMirror{}, nil
	}
	client, _, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisRangeMirror{client: client}, nil
}

func NewNoopRangeMirror() RangeMirror {
	return &noopRangeMirror{}
}

func rangeMirrorKey(productID int64) string {
	return fmt.Sprintf("products:%d:power_range", productID)
}

func (m *redisRangeMirror) Set(ctx context.Context, productID int64, powerRange []string) error {
	payload, err := json.Marshal(powerRange)
	if err != nil {
		return fmt.Errorf("encode power range mirror: %w", err)
	}
	if err := m.client.Set(ctx, rangeMirrorKey(productID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (m *redisRangeMirror) Get(ctx context.Context, productID int64) ([]string, bool, error) {
	payload, err := m.client.Get(ctx, rangeMirrorKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	var keys []string
	if err := json.Unmarshal(payload, &keys); err != nil {
		return nil, false, fmt.Errorf("decode power range mirror: %w", err)
	}
	return keys, true, nil
}

func (m *noopRangeMirror) Set(context.Context, int64, []string) error { return nil }
func (m *noopRangeMirror) Get(context.Context, int64) ([]string, bool, error) {
	return nil, false, nil
}
