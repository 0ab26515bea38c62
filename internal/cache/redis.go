package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "bbref:page:"

// RedisCache keeps fetched pages so re-runs do not hit the source site again
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// GetPage returns a cached page body. A miss is ("", false, nil).
func (rc *RedisCache) GetPage(ctx context.Context, url string) (string, bool, error) {
	body, err := rc.client.Get(ctx, PageKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return body, true, nil
}

// SetPage stores a page body with the cache TTL
func (rc *RedisCache) SetPage(ctx context.Context, url, body string) error {
	return rc.client.Set(ctx, PageKey(url), body, rc.ttl).Err()
}

// DeletePage removes a page
func (rc *RedisCache) DeletePage(ctx context.Context, url string) error {
	return rc.client.Del(ctx, PageKey(url)).Err()
}

// PageKey is the redis key for a page URL.
func PageKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return pageKeyPrefix + hex.EncodeToString(sum[:])
}
