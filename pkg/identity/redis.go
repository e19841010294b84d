package identity

import (
	"context"

	"github.com/OFFIS-RIT/atlas/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisCacheKey = "atlas:identity-cache"

// RedisCache is a Cache backed by a single redis hash, for deployments where
// several processes mutate the same graph and need shared cache state.
//
// Redis failures are logged and treated as misses; the engine must stay
// correct on a cold cache anyway.
type RedisCache struct {
	client *redis.Client
	max    int64
}

// NewRedisCache creates a RedisCache on an existing client. A max <= 0 falls
// back to DefaultCacheSize.
func NewRedisCache(client *redis.Client, max int) *RedisCache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &RedisCache{
		client: client,
		max:    int64(max),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	id, err := c.client.HGet(ctx, redisCacheKey, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Warn("[Cache] Redis read failed, treating as miss", "err", err)
		return "", false
	}
	return id, true
}

func (c *RedisCache) Put(ctx context.Context, key, id string) {
	size, err := c.client.HLen(ctx, redisCacheKey).Result()
	if err != nil {
		logger.Warn("[Cache] Redis size check failed, skipping put", "err", err)
		return
	}
	if size >= c.max {
		c.Clear(ctx)
	}
	if err := c.client.HSet(ctx, redisCacheKey, key, id).Err(); err != nil {
		logger.Warn("[Cache] Redis write failed", "err", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.HDel(ctx, redisCacheKey, key).Err(); err != nil {
		logger.Warn("[Cache] Redis invalidate failed, clearing cache", "err", err)
		c.Clear(ctx)
	}
}

func (c *RedisCache) Clear(ctx context.Context) {
	if err := c.client.Del(ctx, redisCacheKey).Err(); err != nil {
		logger.Warn("[Cache] Redis clear failed", "err", err)
	}
}
