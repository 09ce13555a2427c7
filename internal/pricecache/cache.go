// Package pricecache keeps recently computed style pricing in Redis so that
// repeated searches for popular styles do not refetch every size and color.
package pricecache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront-catalog/internal/model"
	"storefront-catalog/internal/pricing"
)

const DefaultTTL = 10 * time.Minute

// Cache is a TTL cache of per-style pricing. A nil *Cache is valid and
// never hits, which is how the cache is disabled.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to addr. An empty addr returns nil (cache disabled).
func New(addr string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  300 * time.Millisecond,
		WriteTimeout: 300 * time.Millisecond,
		MaxRetries:   -1,
	})
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(styleID string, tier pricing.Tier) string {
	return fmt.Sprintf("price:%s:%s", styleID, tier)
}

// Get returns cached pricing for styleID in tier. Redis errors are logged
// and reported as a miss.
func (c *Cache) Get(ctx context.Context, styleID string, tier pricing.Tier) (*model.StylePricing, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key(styleID, tier)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("PriceCache: get %s: %v", styleID, err)
		return nil, false
	}
	var p model.StylePricing
	if err := json.Unmarshal(val, &p); err != nil {
		log.Printf("PriceCache: corrupt entry for %s: %v", styleID, err)
		return nil, false
	}
	return &p, true
}

// Set stores p for styleID in tier. A nil p is not cached.
func (c *Cache) Set(ctx context.Context, styleID string, tier pricing.Tier, p *model.StylePricing) {
	if c == nil || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(styleID, tier), data, c.ttl).Err(); err != nil {
		log.Printf("PriceCache: set %s: %v", styleID, err)
	}
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
