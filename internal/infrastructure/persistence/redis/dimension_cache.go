package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DIMENSION CACHE
// Caches the generated 5-label dimension list per topic so repeat topic
// exploration skips the provider. Strictly best effort: a Disabled instance
// always misses, and callers never fail on a cache error.
// ══════════════════════════════════════════════════════════════════════════════

// PrefixDimensions is the key prefix for cached dimension lists.
const PrefixDimensions = "dimensions:"

// DimensionCache implements the application's dimension cache port.
type DimensionCache struct {
	cache *Cache
	ttl   time.Duration

	// disabled makes every read a miss and every write a no-op, for
	// development without Redis.
	disabled bool
}

// NewDimensionCache creates a dimension cache on top of a Cache client.
func NewDimensionCache(cache *Cache, ttl time.Duration) *DimensionCache {
	return &DimensionCache{cache: cache, ttl: ttl}
}

// NewDisabledDimensionCache creates a cache that always misses.
func NewDisabledDimensionCache() *DimensionCache {
	return &DimensionCache{disabled: true}
}

// GetDimensions returns the cached labels for a topic, or shared.ErrNotFound
// on a miss.
func (d *DimensionCache) GetDimensions(ctx context.Context, topic string) ([]string, error) {
	if d.disabled {
		return nil, shared.ErrNotFound
	}

	var dimensions []string
	err := d.cache.Get(ctx, dimensionKey(topic), &dimensions)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapError("content", "GetDimensions", shared.ErrCacheUnavailable,
			"dimension cache read failed", err)
	}

	return dimensions, nil
}

// SetDimensions stores the labels for a topic.
func (d *DimensionCache) SetDimensions(ctx context.Context, topic string, dimensions []string) error {
	if d.disabled {
		return nil
	}

	if err := d.cache.Set(ctx, dimensionKey(topic), dimensions, d.ttl); err != nil {
		return shared.WrapError("content", "SetDimensions", shared.ErrCacheUnavailable,
			"dimension cache write failed", err)
	}

	return nil
}

func dimensionKey(topic string) string {
	return PrefixDimensions + strings.ToLower(strings.TrimSpace(topic))
}
