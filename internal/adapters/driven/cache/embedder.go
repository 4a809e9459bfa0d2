// Package cache provides the caching embedding decorator and its storage levels.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure CachingEmbedder implements the interface.
var _ driven.EmbeddingService = (*CachingEmbedder)(nil)

// Key returns the cache key of text under model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}

// CachingEmbedder serves embeddings from cache levels before calling the
// wrapped service. Levels are consulted in order; a hit backfills the
// levels before it. Concurrent misses for the same text share one call,
// which a caller cancelling its own request does not abort.
type CachingEmbedder struct {
	next    driven.EmbeddingService
	levels  []driven.EmbeddingCache
	group   singleflight.Group
	log     *zap.Logger
	metrics driven.Metrics
}

// NewCachingEmbedder wraps next. Nil levels are ignored.
func NewCachingEmbedder(next driven.EmbeddingService, log *zap.Logger, metrics driven.Metrics, levels ...driven.EmbeddingCache) *CachingEmbedder {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	active := make([]driven.EmbeddingCache, 0, len(levels))
	for _, l := range levels {
		if l != nil {
			active = append(active, l)
		}
	}
	return &CachingEmbedder{
		next:    next,
		levels:  active,
		log:     log,
		metrics: metrics,
	}
}

// Embed returns the embedding of text, from cache when possible.
func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		c.log.Warn("refusing to embed empty text")
		return nil, domain.ErrEmptyText
	}

	key := Key(c.next.ModelName(), text)
	if vec, ok := c.lookup(ctx, key); ok {
		return vec, nil
	}

	// The shared call outlives any single caller; each caller waits on its
	// own context. Provider timeouts and retries bound the call.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		vec, err := c.next.Embed(shared, text)
		if err != nil {
			return nil, err
		}
		if err := c.checkDim(vec); err != nil {
			return nil, err
		}
		c.store(shared, key, vec)
		return vec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return copyVec(res.Val.([]float32)), nil
	}
}

// EmbedBatch returns index-aligned embeddings. Only cache misses are sent
// to the wrapped service, deduplicated, in one batch call.
func (c *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			c.log.Warn("refusing to embed empty text", zap.Int("index", i))
			return nil, fmt.Errorf("text %d: %w", i, domain.ErrEmptyText)
		}
	}

	model := c.next.ModelName()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	pending := make(map[string][]int)
	var missTexts []string
	var missKeys []string

	for i, t := range texts {
		keys[i] = Key(model, t)
		if vec, ok := c.lookup(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		if _, seen := pending[keys[i]]; !seen {
			missTexts = append(missTexts, t)
			missKeys = append(missKeys, keys[i])
		}
		pending[keys[i]] = append(pending[keys[i]], i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, vec := range vecs {
		if err := c.checkDim(vec); err != nil {
			return nil, fmt.Errorf("text %d: %w", pending[missKeys[j]][0], err)
		}
		c.store(ctx, missKeys[j], vec)
		for _, i := range pending[missKeys[j]] {
			out[i] = copyVec(vec)
		}
	}
	return out, nil
}

// Dimensions implements driven.EmbeddingService.
func (c *CachingEmbedder) Dimensions() int { return c.next.Dimensions() }

// ModelName implements driven.EmbeddingService.
func (c *CachingEmbedder) ModelName() string { return c.next.ModelName() }

// Ping implements driven.EmbeddingService.
func (c *CachingEmbedder) Ping(ctx context.Context) error { return c.next.Ping(ctx) }

// Close closes the wrapped service and every level that holds resources.
func (c *CachingEmbedder) Close() error {
	errs := []error{c.next.Close()}
	for _, level := range c.levels {
		if closer, ok := level.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

func (c *CachingEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	for i, level := range c.levels {
		vec, ok, err := level.Get(ctx, key)
		if err != nil {
			c.log.Warn("embedding cache lookup failed",
				zap.String("level", level.Name()),
				zap.Error(err))
			ok = false
		}
		if ok && c.checkDim(vec) != nil {
			ok = false
		}
		c.metrics.ObserveCache(level.Name(), ok)
		if !ok {
			continue
		}
		for _, earlier := range c.levels[:i] {
			if err := earlier.Set(ctx, key, vec); err != nil {
				c.log.Warn("embedding cache backfill failed",
					zap.String("level", earlier.Name()),
					zap.Error(err))
			}
		}
		return vec, true
	}
	return nil, false
}

func (c *CachingEmbedder) store(ctx context.Context, key string, vec []float32) {
	for _, level := range c.levels {
		if err := level.Set(ctx, key, vec); err != nil {
			c.log.Warn("embedding cache store failed",
				zap.String("level", level.Name()),
				zap.Error(err))
		}
	}
}

func (c *CachingEmbedder) checkDim(vec []float32) error {
	want := c.next.Dimensions()
	if len(vec) == 0 || (want > 0 && len(vec) != want) {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), want)
	}
	return nil
}

func copyVec(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
