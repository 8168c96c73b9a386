// Package cache implements Synch's Redis cache-aside in front of its
// brand/color reference lookups (SPEC_FULL.md §4.12, grounded on the
// teacher's stock/cache.go + stock/store_cached.go, repurposed from
// menu items to the small, near-static brand/color records).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kea-dealership/event-core/common/catalog"
)

// NewClient opens a Redis client and verifies connectivity with a
// bounded Ping, mirroring the teacher's NewItemCache connect step.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// BrandColorCache wraps a *redis.Client with the Get/Set/miss cycle
// the BrandLookup/ColorLookup cache-aside wrappers below use.
type BrandColorCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewBrandColorCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *BrandColorCache {
	return &BrandColorCache{client: client, ttl: ttl, logger: logger}
}

func (c *BrandColorCache) getBrand(ctx context.Context, id string) (catalog.Brand, bool) {
	return getEntry[catalog.Brand](ctx, c, "brand:"+id)
}

func (c *BrandColorCache) setBrand(ctx context.Context, b catalog.Brand) {
	setEntry(ctx, c, "brand:"+b.ID, b)
}

func (c *BrandColorCache) getColor(ctx context.Context, id string) (catalog.Color, bool) {
	return getEntry[catalog.Color](ctx, c, "color:"+id)
}

func (c *BrandColorCache) setColor(ctx context.Context, col catalog.Color) {
	setEntry(ctx, c, "color:"+col.ID, col)
}

func getEntry[T any](ctx context.Context, c *BrandColorCache, key string) (T, bool) {
	var zero T
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		c.logger.Warn("cache get error, falling back to store", slog.String("key", key), slog.Any("error", err))
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("cache value corrupt, falling back to store", slog.String("key", key), slog.Any("error", err))
		return zero, false
	}
	return v, true
}

func setEntry[T any](ctx context.Context, c *BrandColorCache, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal cache entry", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to populate cache", slog.String("key", key), slog.Any("error", err))
	}
}

// BrandLookup is the read-through cache-aside wrapper satisfying
// reconcile.BrandLookup: check Redis, on miss fall through to the
// underlying store and populate the cache, best-effort.
type BrandLookup struct {
	cache *BrandColorCache
	store interface {
		GetByID(ctx context.Context, id string) (catalog.Brand, bool, error)
	}
}

func NewBrandLookup(cache *BrandColorCache, store interface {
	GetByID(ctx context.Context, id string) (catalog.Brand, bool, error)
}) BrandLookup {
	return BrandLookup{cache: cache, store: store}
}

func (l BrandLookup) GetByID(ctx context.Context, id string) (catalog.Brand, bool, error) {
	if b, hit := l.cache.getBrand(ctx, id); hit {
		return b, true, nil
	}
	b, has, err := l.store.GetByID(ctx, id)
	if err != nil || !has {
		return b, has, err
	}
	l.cache.setBrand(ctx, b)
	return b, true, nil
}

// ColorLookup is BrandLookup's color-side counterpart.
type ColorLookup struct {
	cache *BrandColorCache
	store interface {
		GetByID(ctx context.Context, id string) (catalog.Color, bool, error)
	}
}

func NewColorLookup(cache *BrandColorCache, store interface {
	GetByID(ctx context.Context, id string) (catalog.Color, bool, error)
}) ColorLookup {
	return ColorLookup{cache: cache, store: store}
}

func (l ColorLookup) GetByID(ctx context.Context, id string) (catalog.Color, bool, error) {
	if col, hit := l.cache.getColor(ctx, id); hit {
		return col, true, nil
	}
	col, has, err := l.store.GetByID(ctx, id)
	if err != nil || !has {
		return col, has, err
	}
	l.cache.setColor(ctx, col)
	return col, true, nil
}
