package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis client methods used by RedisCache.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

// RedisCache stores entries in Redis under a key prefix.
type RedisCache struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to addr and verifies the connection with PING.
func NewRedisCache(ctx context.Context, addr, prefix string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis cache %s: ping failed: %w", addr, err)
	}
	return NewRedisCacheWithClient(client, prefix, ttl), nil
}

// NewRedisCacheWithClient creates a RedisCache backed by a pre-built client.
func NewRedisCacheWithClient(client RedisClient, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Get reads the prefixed key. A missing key is not an error.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.prefixed(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set writes the prefixed key with the cache TTL.
func (r *RedisCache) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefixed(key), value, r.ttl).Err()
}

// Delete removes the prefixed key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefixed(key)).Err()
}

// DeletePrefix walks matching keys with SCAN and deletes them batch by batch.
func (r *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	match := escapeGlob(r.prefixed(prefix)) + "*"
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", match, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete %d keys: %w", len(keys), err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Flush removes every key under the cache prefix. Keys of other
// applications sharing the Redis database are left alone.
func (r *RedisCache) Flush(ctx context.Context) error {
	return r.DeletePrefix(ctx, "")
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) prefixed(key string) string {
	return r.prefix + key
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
