// Package redis provides a shared embedding cache backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// KeyPrefix namespaces cache entries.
const KeyPrefix = "regula:embedding:"

// Cache stores vectors as little-endian float32 blobs with a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis server at url (redis://host:port/db).
func New(url string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewWithClient(redis.NewClient(opts), ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached vector. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	vec, err := vecmath.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("redis entry %s: %w", key, err)
	}
	return vec, true, nil
}

// Set stores vec with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, vec []float32) error {
	if err := c.client.Set(ctx, KeyPrefix+key, vecmath.Encode(vec), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Name returns "redis".
func (c *Cache) Name() string {
	return "redis"
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
