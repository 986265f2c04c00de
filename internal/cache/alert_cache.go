package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/config"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const alertSnapshotKey = "alerts:snapshot"

// AlertCache holds the last full alert evaluation so the alert list does
// not refold every order on every request. Cache-aside with TTL; misses
// and errors fall through to a fresh evaluation.
type AlertCache interface {
	Get(ctx context.Context) ([]*domain.AlertItem, bool, error)
	Set(ctx context.Context, items []*domain.AlertItem) error
	Invalidate(ctx context.Context) error
}

type redisAlertCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAlertCache struct{}

func NewAlertCache(cfg config.CacheConfig) (AlertCache, error) {
	if !cfg.Enabled {
		return &noopAlertCache{}, nil
	}
	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisAlertCache{client: client, ttl: ttl}, nil
}

func NewNoopAlertCache() AlertCache {
	return &noopAlertCache{}
}

func (c *redisAlertCache) Get(ctx context.Context) ([]*domain.AlertItem, bool, error) {
	payload, err := c.client.Get(ctx, alertSnapshotKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []*domain.AlertItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode alert snapshot cache: %w", err)
	}
	return items, true, nil
}

func (c *redisAlertCache) Set(ctx context.Context, items []*domain.AlertItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode alert snapshot cache: %w", err)
	}
	if err := c.client.Set(ctx, alertSnapshotKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAlertCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, alertSnapshotKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *noopAlertCache) Get(context.Context) ([]*domain.AlertItem, bool, error) {
	return nil, false, nil
}
func (c *noopAlertCache) Set(context.Context, []*domain.AlertItem) error { return nil }
func (c *noopAlertCache) Invalidate(context.Context) error               { return nil }
