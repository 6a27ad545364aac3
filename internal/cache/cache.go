// Package cache memoizes list-query responses in Redis with a configurable TTL.
// Mutations invalidate whole key prefixes rather than individual entries, so a
// stale page can never outlive its TTL after a write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when the requested key is not present.
var ErrMiss = errors.New("cache: key not found")

// PrefixMovies namespaces cached movie list queries.
const PrefixMovies = "movies:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Logger   *log.Logger
}

// Cache wraps a Redis client with JSON serialization and TTL management.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// New connects to Redis and verifies reachability with a ping.
func New(ctx context.Context, opts Options) (*Cache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Printf("cache: redis connection established (ttl=%s)", opts.TTL)

	return &Cache{client: client, ttl: opts.TTL, logger: logger}, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get retrieves and deserializes a cached value into dest.
// Returns ErrMiss when the key is absent or expired.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return nil
}

// Set serializes value to JSON and stores it under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// InvalidatePrefix deletes every key under the given prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// MovieListKey derives a cache key from movie list query parameters.
func MovieListKey(genre string, page, limit int) string {
	if genre == "" {
		genre = "all"
	}
	return fmt.Sprintf("%slist:%s:%d:%d", PrefixMovies, genre, page, limit)
}
