package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/optiqo/lenshop/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const purchasedSetKey = "alerts:purchased"

// PurchasedSet persists the product IDs marked "already purchased" on the
// alert list. The alert service prunes it after every recomputation.
type PurchasedSet interface {
	Add(ctx context.Context, productID int64) error
	Remove(ctx context.Context, productIDs ...int64) error
	Members(ctx context.Context) (map[int64]struct{}, error)
}

type redisPurchasedSet struct {
	client *redis.Client
}

// memoryPurchasedSet backs deployments without Redis. Process-local, so
// the purchased marks reset on restart; the pruning invariant still holds.
type memoryPurchasedSet struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func NewPurchasedSet(cfg config.CacheConfig) (PurchasedSet, error) {
	if !cfg.Enabled {
		return NewMemoryPurchasedSet(), nil
	}
	client, _, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisPurchasedSet{client: client}, nil
}

func NewMemoryPurchasedSet() PurchasedSet {
	return &memoryPurchasedSet{ids: make(map[int64]struct{})}
}

func (s *redisPurchasedSet) Add(ctx context.Context, productID int64) error {
	if err := s.client.SAdd(ctx, purchasedSetKey, productID).Err(); err != nil {
		return fmt.Errorf("redis sadd failed: %w", err)
	}
	return nil
}

func (s *redisPurchasedSet) Remove(ctx context.Context, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(productIDs))
	for i, id := range productIDs {
		members[i] = id
	}
	if err := s.client.SRem(ctx, purchasedSetKey, members...).Err(); err != nil {
		return fmt.Errorf("redis srem failed: %w", err)
	}
	return nil
}

func (s *redisPurchasedSet) Members(ctx context.Context) (map[int64]struct{}, error) {
	raw, err := s.client.SMembers(ctx, purchasedSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failed: %w", err)
	}
	ids := make(map[int64]struct{}, len(raw))
	for _, member := range raw {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *memoryPurchasedSet) Add(_ context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[productID] = struct{}{}
	return nil
}

func (s *memoryPurchasedSet) Remove(_ context.Context, productIDs ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range productIDs {
		delete(s.ids, id)
	}
	return nil
}

func (s *memoryPurchasedSet) Members(_ context.Context) (map[int64]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[int64]struct{}, len(s.ids))
	for id := range s.ids {
		ids[id] = struct{}{}
	}
	return ids, nil
}
