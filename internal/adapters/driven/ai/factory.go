// Package ai assembles the provider-backed services: the DashScope
// embedding and generation clients wrapped with retries and caching,
// and the vector index they feed.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	embedcache "github.com/custodia-labs/regula/internal/adapters/driven/cache"
	"github.com/custodia-labs/regula/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/regula/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/regula/internal/adapters/driven/compat"
	"github.com/custodia-labs/regula/internal/adapters/driven/config/file"
	openaiembed "github.com/custodia-labs/regula/internal/adapters/driven/embedding/openai"
	openaillm "github.com/custodia-labs/regula/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/regula/internal/adapters/driven/resilience"
	memstore "github.com/custodia-labs/regula/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/regula/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 10 * time.Second

// Options configures service creation.
type Options struct {
	Settings *domain.Settings

	// Logger receives adapter logs. Nil disables logging.
	Logger *zap.Logger

	// Metrics receives provider, cache and retry observations. Optional.
	Metrics driven.Metrics

	// InMemoryIndex replaces the sqlite index with a process-local one.
	InMemoryIndex bool

	// PromptDir overrides the prompt template directory.
	PromptDir string

	// HTTPClient overrides the provider HTTP client. Optional.
	HTTPClient *http.Client
}

// InitResult contains the initialised services.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	IndexRuns        driven.IndexRunStore // Nil for the in-memory index.
	PromptStore      driven.PromptStore   // User-customisable prompt templates.
	Warnings         []string             // Non-fatal issues that caused fallback.

	closers []func() error
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Init creates the provider services and opens the vector index.
// A missing API key fails with domain.ErrMissingCredential.
func Init(opts Options) (*InitResult, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	if err := opts.Settings.RequireAPIKey(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = driven.NopMetrics{}
	}

	result := &InitResult{}

	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}

	retrier := resilience.NewRetrier(resilience.FromSettings(opts.Settings.Retry), opts.Logger.Named("retry"), opts.Metrics)

	embedder, warnings, err := CreateEmbeddingService(opts, client, retrier)
	if err != nil {
		return nil, err
	}
	result.EmbeddingService = embedder
	result.Warnings = append(result.Warnings, warnings...)
	result.closers = append(result.closers, embedder.Close)

	llm, err := CreateLLMService(opts, client, retrier)
	if err != nil {
		_ = result.Close()
		return nil, err
	}
	result.LLMService = llm
	result.closers = append(result.closers, llm.Close)

	if err := result.openIndex(opts); err != nil {
		_ = result.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore(opts.PromptDir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("prompt store unavailable, using built-in prompts: %v", err))
	} else {
		result.PromptStore = prompts
	}

	for _, w := range result.Warnings {
		opts.Logger.Warn(w)
	}
	return result, nil
}

// NewClient creates the shared provider connection.
func NewClient(opts Options) (*compat.Client, error) {
	p := opts.Settings.Provider
	client, err := compat.New(compat.Config{
		APIKey:            p.APIKey,
		BaseURL:           p.BaseURL,
		Timeout:           p.Timeout,
		RequestsPerSecond: p.RequestsPerSecond,
		Metrics:           opts.Metrics,
		HTTPClient:        opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider client: %w", err)
	}
	return client, nil
}

// CreateEmbeddingService returns the embedding client wrapped with retries
// and the cache levels. An unreachable Redis level is skipped with a warning.
func CreateEmbeddingService(opts Options, client *compat.Client, retrier *resilience.Retrier) (driven.EmbeddingService, []string, error) {
	s := opts.Settings
	base, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		Client:     client,
		Model:      s.Models.EmbeddingModel,
		Dimensions: s.Models.EmbeddingDimension,
	})
	if err != nil {
		return nil, nil, err
	}

	levels := []driven.EmbeddingCache{memory.New(s.Cache.Size, s.Cache.TTL)}
	var warnings []string
	if s.Cache.RedisURL != "" {
		shared, err := connectRedis(s.Cache.RedisURL, s.Cache.TTL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("redis embedding cache disabled: %v", err))
		} else {
			levels = append(levels, shared)
		}
	}

	retrying := resilience.NewRetryingEmbedder(base, retrier)
	return embedcache.NewCachingEmbedder(retrying, opts.Logger.Named("embedding"), opts.Metrics, levels...), warnings, nil
}

// CreateLLMService returns the generation client wrapped with retries.
func CreateLLMService(opts Options, client *compat.Client, retrier *resilience.Retrier) (driven.LLMService, error) {
	base, err := openaillm.NewLLMService(openaillm.Config{
		Client: client,
		Model:  opts.Settings.Models.GenerationModel,
	})
	if err != nil {
		return nil, err
	}
	return resilience.NewRetryingGenerator(base, retrier), nil
}

// OpenVectorIndex opens the configured vector index. The sqlite index also
// records index runs.
func OpenVectorIndex(opts Options) (driven.VectorIndex, driven.IndexRunStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.InMemoryIndex {
		return memstore.NewVectorIndex(log.Named("index")), nil, nil
	}
	store, err := sqlite.NewStore(opts.Settings.DataDir, log.Named("index"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	return store, store, nil
}

func (r *InitResult) openIndex(opts Options) error {
	index, runs, err := OpenVectorIndex(opts)
	if err != nil {
		return err
	}
	r.VectorIndex = index
	r.IndexRuns = runs
	r.closers = append(r.closers, index.Close)
	return nil
}

func connectRedis(url string, ttl time.Duration) (*rediscache.Cache, error) {
	c, err := rediscache.New(url, ttl)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
