package driven

import "context"

// EmbeddingService turns text into vectors of a fixed dimension.
type EmbeddingService interface {
	Provider
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// EmbeddingCache is one level of the embedding cache, keyed by model and
// text. Name labels the level in logs and metrics.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
	Name() string
}
