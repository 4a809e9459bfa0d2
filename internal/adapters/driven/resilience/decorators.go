package resilience

import (
	"context"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*RetryingEmbedder)(nil)
	_ driven.LLMService       = (*RetryingGenerator)(nil)
)

// Operation names reported to logs and metrics.
const (
	OpEmbed    = "embed"
	OpGenerate = "generate"
)

// RetryingEmbedder retries failed embedding calls.
type RetryingEmbedder struct {
	next    driven.EmbeddingService
	retrier *Retrier
}

// NewRetryingEmbedder wraps next with the retrier.
func NewRetryingEmbedder(next driven.EmbeddingService, retrier *Retrier) *RetryingEmbedder {
	return &RetryingEmbedder{next: next, retrier: retrier}
}

// Embed implements driven.EmbeddingService.
func (e *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := e.retrier.Do(ctx, OpEmbed, func(ctx context.Context) error {
		var err error
		vec, err = e.next.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch implements driven.EmbeddingService. The whole batch is retried.
func (e *RetryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := e.retrier.Do(ctx, OpEmbed, func(ctx context.Context) error {
		var err error
		vecs, err = e.next.EmbedBatch(ctx, texts)
		return err
	})
	return vecs, err
}

// Dimensions implements driven.EmbeddingService.
func (e *RetryingEmbedder) Dimensions() int { return e.next.Dimensions() }

// ModelName implements driven.EmbeddingService.
func (e *RetryingEmbedder) ModelName() string { return e.next.ModelName() }

// Ping is not retried.
func (e *RetryingEmbedder) Ping(ctx context.Context) error { return e.next.Ping(ctx) }

// Close implements driven.EmbeddingService.
func (e *RetryingEmbedder) Close() error { return e.next.Close() }

// RetryingGenerator retries failed generation calls.
type RetryingGenerator struct {
	next    driven.LLMService
	retrier *Retrier
}

// NewRetryingGenerator wraps next with the retrier.
func NewRetryingGenerator(next driven.LLMService, retrier *Retrier) *RetryingGenerator {
	return &RetryingGenerator{next: next, retrier: retrier}
}

// Generate implements driven.LLMService.
func (g *RetryingGenerator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := g.retrier.Do(ctx, OpGenerate, func(ctx context.Context) error {
		var err error
		out, err = g.next.Generate(ctx, prompt, opts)
		return err
	})
	return out, err
}

// ModelName implements driven.LLMService.
func (g *RetryingGenerator) ModelName() string { return g.next.ModelName() }

// Ping is not retried.
func (g *RetryingGenerator) Ping(ctx context.Context) error { return g.next.Ping(ctx) }

// Close implements driven.LLMService.
func (g *RetryingGenerator) Close() error { return g.next.Close() }
