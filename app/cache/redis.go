package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-pull/app/fetch"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rss-pull:response:"

var _ fetch.ResponseCache = (*RedisCache)(nil)

// RedisCache keeps downloaded documents in Redis, for deployments where
// several instances share one cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type cachedResponse struct {
	Body      []byte `json:"body"`
	FetchedAt int64  `json:"fetched_at"`
}

// NewRedisCache connects to addr. Entries expire from Redis after ttl.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &RedisCache{client: client, ttl: ttl}, nil
}

// responseKey hashes url so arbitrary query strings make valid, short keys.
func responseKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:8])
}

func (c *RedisCache) Get(url string, maxAge time.Duration) ([]byte, bool, error) {
	ctx := context.Background()
	key := responseKey(url)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		// Unreadable entries count as a miss and are dropped.
		c.client.Del(ctx, key)
		return nil, false, nil
	}

	if time.Since(time.Unix(cached.FetchedAt, 0)) > maxAge {
		return nil, false, nil
	}

	return cached.Body, true, nil
}

func (c *RedisCache) Put(url string, body []byte) error {
	data, err := json.Marshal(cachedResponse{Body: body, FetchedAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("failed to marshal response for %s: %w", url, err)
	}

	key := responseKey(url)
	if err := c.client.Set(context.Background(), key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Clear removes this service's keys only; the rest of the database is untouched.
func (c *RedisCache) Clear() error {
	ctx := context.Background()
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached responses: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cached responses: %w", err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
