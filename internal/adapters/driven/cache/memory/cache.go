// Package memory provides a size and TTL bounded in-process embedding cache.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Default bounds.
const (
	DefaultSize = 1024
	DefaultTTL  = 24 * time.Hour
)

// Cache is an LRU embedding cache with per-entry expiry.
type Cache struct {
	lru *expirable.LRU[string, []float32]
}

// New creates a cache holding at most size entries for ttl each.
// Non-positive values select the defaults.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, []float32](size, nil, ttl)}
}

// Get returns a copy of the cached vector.
func (c *Cache) Get(_ context.Context, key string) ([]float32, bool, error) {
	vec, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]float32(nil), vec...), true, nil
}

// Set stores a copy of vec.
func (c *Cache) Set(_ context.Context, key string, vec []float32) error {
	c.lru.Add(key, append([]float32(nil), vec...))
	return nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Name returns "memory".
func (c *Cache) Name() string {
	return "memory"
}
