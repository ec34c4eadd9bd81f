package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache implements ports.Cache using a Redis client.
type Cache struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix string
}

// NewCache creates a new Redis-backed cache. With an empty prefix the cache
// owns the whole logical DB and Clear flushes it; with a prefix, entries are
// namespaced and Clear only deletes keys under the prefix.
func NewCache(r redis.Cmdable, prefix string) *Cache {
	return &Cache{r: r, prefix: prefix}
}

func (c *Cache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get implements Cache.Get.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache.Set.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.r.Set(ctx, c.namespaced(key), value, ttl).Err()
}

// Delete implements Cache.Delete.
func (c *Cache) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ns := make([]string, len(keys))
	for i, k := range keys {
		ns[i] = c.namespaced(k)
	}
	return c.r.Del(ctx, ns...).Result()
}

// Clear implements Cache.Clear. Unprefixed caches use FLUSHDB like the
// original; prefixed caches walk their namespace with SCAN so co-tenants of
// the DB are untouched.
func (c *Cache) Clear(ctx context.Context) error {
	if c.prefix == "" {
		return c.r.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := c.r.Scan(ctx, cursor, c.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.r.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
