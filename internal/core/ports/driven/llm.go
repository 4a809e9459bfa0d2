package driven

import "context"

// Provider is what every model-backed port exposes besides its main call.
type Provider interface {
	ModelName() string
	// Ping makes the cheapest request that proves the credential works.
	Ping(ctx context.Context) error
	Close() error
}

// LLMService generates text for query expansion and answers.
type LLMService interface {
	Provider
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions tunes one Generate call. Zero MaxTokens leaves the limit
// to the provider.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	Stop        []string
}
