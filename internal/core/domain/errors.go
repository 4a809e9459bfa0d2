package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates the provider API key is not set.
	// Commands that call the embedding or generation provider cannot start without it.
	ErrMissingCredential = errors.New("missing provider credential")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Provider Errors.

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the provider rejected the credentials.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrProviderTimeout indicates a provider call did not finish in time.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderUnavailable indicates a transient provider failure (5xx, network).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// Embedding Errors.

	// ErrEmptyText indicates an empty or whitespace-only text was submitted for embedding.
	ErrEmptyText = errors.New("empty text")

	// ErrDimensionMismatch indicates an embedding vector of unexpected size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
