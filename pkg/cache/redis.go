package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis. Expiration is handled by Redis itself.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache connects to the Redis server at addr and verifies the
// connection, retrying transient failures with backoff.
func NewRedisCache(ctx context.Context, addr string) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := ping(ctx, "redis "+addr, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client, for example a cluster or
// sentinel client. The cache takes ownership and closes it on Close.
func NewRedisCacheFromClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. A zero ttl keeps the key until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a key from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// clearBatch is the SCAN page size and DEL batch size of Clear.
const clearBatch = 500

// Clear deletes every layout and artifact key, including scoped ones. Other
// keys sharing the database are left alone.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	n := 0
	for _, pattern := range []string{"*layout:*", "*artifact:*"} {
		var batch []string
		iter := c.client.Scan(ctx, 0, pattern, clearBatch).Iterator()
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == clearBatch {
				removed, err := c.client.Del(ctx, batch...).Result()
				n += int(removed)
				if err != nil {
					return n, err
				}
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return n, err
		}
		if len(batch) > 0 {
			removed, err := c.client.Del(ctx, batch...).Result()
			n += int(removed)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
