// Package cache holds the Redis-backed product cache and the credential
// rate limiter. Both share one connection pool owned by Cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2

	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute
)

// Options tunes the Redis connection pool. Zero values fall back to the
// package defaults.
type Options struct {
	PoolSize     int
	MinIdleConns int
}

// Cache owns the Redis connection used by the product cache and the
// rate limiter.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at redisURL and verifies the connection with a ping.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}

	applyPoolOptions(parsed, opts)

	client := redis.NewClient(parsed)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func applyPoolOptions(parsed *redis.Options, opts Options) {
	parsed.PoolSize = opts.PoolSize
	if parsed.PoolSize <= 0 {
		parsed.PoolSize = defaultPoolSize
	}
	parsed.MinIdleConns = opts.MinIdleConns
	if parsed.MinIdleConns <= 0 {
		parsed.MinIdleConns = defaultMinIdleConns
	}
	parsed.PoolTimeout = poolTimeout
	parsed.ConnMaxIdleTime = connMaxIdleTime
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
