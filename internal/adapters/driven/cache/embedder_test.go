package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/regula/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

type countingEmbedder struct {
	dims    int
	calls   atomic.Int32
	batches [][]string
	mu      sync.Mutex
	release chan struct{}
	vec     []float32
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.vec != nil {
		return e.vec, nil
	}
	return e.vectorFor(text), nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.batches = append(e.batches, texts)
	e.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vectorFor(t)
	}
	return out, nil
}

func (e *countingEmbedder) vectorFor(text string) []float32 {
	v := make([]float32, e.dims)
	v[0] = float32(len([]rune(text)))
	return v
}

func (e *countingEmbedder) Dimensions() int { return e.dims }
func (e *countingEmbedder) ModelName() string { return "test-model" }
func (e *countingEmbedder) Ping(context.Context) error { return nil }
func (e *countingEmbedder) Close() error { return nil }

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]float32, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []float32) error { return errors.New("cache down") }

func (failingCache) Name() string { return "broken" }

type cacheMetrics struct {
	driven.NopMetrics
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func newCacheMetrics() *cacheMetrics {
	return &cacheMetrics{hits: map[string]int{}, misses: map[string]int{}}
}

func (m *cacheMetrics) ObserveCache(level string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits[level]++
	} else {
		m.misses[level]++
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("m", "建筑"), Key("m", "建筑"))
	assert.NotEqual(t, Key("m", "建筑"), Key("other", "建筑"))
	assert.NotEqual(t, Key("m", "建筑"), Key("m", "建筑 "))
	assert.Contains(t, Key("m", "x"), "m:")
}

func TestCachingEmbedder_Embed_CachesResult(t *testing.T) {
	inner := &countingEmbedder{dims: 3}
	metrics := newCacheMetrics()
	c := NewCachingEmbedder(inner, zap.NewNop(), metrics, memory.New(10, time.Hour))

	first, err := c.Embed(context.Background(), "防火间距")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "防火间距")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, metrics.hits["memory"])
	assert.Equal(t, 1, metrics.misses["memory"])
}

func TestCachingEmbedder_Embed_ReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{dims: 2}
	c := NewCachingEmbedder(inner, nil, nil, memory.New(10, time.Hour))

	first, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	first[0] = 99

	second, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, float32(3), second[0])
}

func TestCachingEmbedder_Embed_EmptyText(t *testing.T) {
	inner := &countingEmbedder{dims: 2}
	c := NewCachingEmbedder(inner, nil, nil, memory.New(10, time.Hour))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.Embed(context.Background(), text)
		assert.ErrorIs(t, err, domain.ErrEmptyText)
	}
	assert.Equal(t, int32(0), inner.calls.Load())
}

func TestCachingEmbedder_Embed_DimensionMismatchNotCached(t *testing.T) {
	inner := &countingEmbedder{dims: 3, vec: []float32{1, 2}}
	level := memory.New(10, time.Hour)
	c := NewCachingEmbedder(inner, nil, nil, level)

	_, err := c.Embed(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = c.Embed(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 0, level.Len())
}

func TestCachingEmbedder_Embed_CoalescesConcurrentMisses(t *testing.T) {
	inner := &countingEmbedder{dims: 2, release: make(chan struct{})}
	c := NewCachingEmbedder(inner, nil, nil, memory.New(10, time.Hour))

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Embed(context.Background(), "same text")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachingEmbedder_Embed_CancelledCallerDoesNotFailOthers(t *testing.T) {
	inner := &countingEmbedder{dims: 2, release: make(chan struct{})}
	level := memory.New(10, time.Hour)
	c := NewCachingEmbedder(inner, nil, nil, level)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Embed(ctxA, "q")
		errA <- err
	}()
	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		vec []float32
		err error
	}
	resB := make(chan result, 1)
	go func() {
		vec, err := c.Embed(context.Background(), "q")
		resB <- result{vec, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(inner.release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Equal(t, []float32{1, 0}, got.vec)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, ok, err := level.Get(context.Background(), Key("test-model", "q"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCachingEmbedder_RedisLevelBackfillsMemory(t *testing.T) {
	srv := miniredis.RunT(t)
	shared, err := rediscache.New("redis://"+srv.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shared.Close() })

	inner := &countingEmbedder{dims: 2}
	warm := NewCachingEmbedder(inner, nil, nil, memory.New(10, time.Hour), shared)
	_, err = warm.Embed(context.Background(), "abcd")
	require.NoError(t, err)

	local := memory.New(10, time.Hour)
	metrics := newCacheMetrics()
	cold := NewCachingEmbedder(inner, nil, metrics, local, shared)
	vec, err := cold.Embed(context.Background(), "abcd")

	require.NoError(t, err)
	assert.Equal(t, float32(4), vec[0])
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, metrics.hits["redis"])
	assert.Equal(t, 1, metrics.misses["memory"])
	assert.Equal(t, 1, local.Len())
}

func TestCachingEmbedder_BrokenLevelFallsThrough(t *testing.T) {
	inner := &countingEmbedder{dims: 2}
	c := NewCachingEmbedder(inner, nil, nil, failingCache{}, nil)

	vec, err := c.Embed(context.Background(), "ab")

	require.NoError(t, err)
	assert.Equal(t, float32(2), vec[0])
}

func TestCachingEmbedder_EmbedBatch(t *testing.T) {
	inner := &countingEmbedder{dims: 2}
	c := NewCachingEmbedder(inner, nil, nil, memory.New(10, time.Hour))

	_, err := c.Embed(context.Background(), "a")
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "bb"})

	require.NoError(t, err)
	require.Len(t, vecs, 4)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(2), vecs[1][0])
	assert.Equal(t, float32(3), vecs[2][0])
	assert.Equal(t, float32(2), vecs[3][0])
	require.Len(t, inner.batches, 1)
	assert.Equal(t, []string{"bb", "ccc"}, inner.batches[0])

	again, err := c.EmbedBatch(context.Background(), []string{"ccc", "a"})
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Len(t, inner.batches, 1)
}

func TestCachingEmbedder_EmbedBatch_EmptyText(t *testing.T) {
	inner := &countingEmbedder{dims: 2}
	c := NewCachingEmbedder(inner, nil, nil)

	_, err := c.EmbedBatch(context.Background(), []string{"a", " "})

	assert.ErrorIs(t, err, domain.ErrEmptyText)
	assert.Equal(t, int32(0), inner.calls.Load())
}

func TestCachingEmbedder_Delegates(t *testing.T) {
	inner := &countingEmbedder{dims: 4}
	c := NewCachingEmbedder(inner, nil, nil)

	assert.Equal(t, 4, c.Dimensions())
	assert.Equal(t, "test-model", c.ModelName())
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
