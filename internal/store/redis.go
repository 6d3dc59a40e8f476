package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

const ordersCacheKey = "orders:all"

// CachedStore wraps a primary Store with a Redis read-through cache for the
// order history. Appends go to the primary store and invalidate the cache;
// reads check Redis first then fall back to the primary. Waitlist operations
// pass through uncached.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) AppendOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	order, err := s.primary.AppendOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	// Invalidate; next read re-populates from the primary.
	s.rdb.Del(ctx, ordersCacheKey)
	return order, nil
}

func (s *CachedStore) Orders(ctx context.Context) ([]model.Order, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, ordersCacheKey).Bytes()
	if err == nil {
		var orders []model.Order
		if json.Unmarshal(data, &orders) == nil {
			return orders, nil
		}
	}

	// Cache miss: read from primary.
	orders, err := s.primary.Orders(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(orders); err == nil {
		s.rdb.Set(ctx, ordersCacheKey, data, s.ttl)
	}
	return orders, nil
}

func (s *CachedStore) AddWaitlistEntry(ctx context.Context, email string) (bool, error) {
	return s.primary.AddWaitlistEntry(ctx, email)
}

func (s *CachedStore) WaitlistEntries(ctx context.Context) ([]model.WaitlistEntry, error) {
	return s.primary.WaitlistEntries(ctx)
}
