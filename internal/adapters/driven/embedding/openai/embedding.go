// Package openai provides an embedding service adapter for OpenAI-compatible
// APIs, used with DashScope text-embedding-v2.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/regula/internal/adapters/driven/compat"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel      = "text-embedding-v2"
	DefaultDimensions = 1536

	// MaxInputsPerRequest is the provider's limit of texts per call.
	MaxInputsPerRequest = 25
)

// Config configures NewEmbeddingService. Client is required; zero values
// select the defaults.
type Config struct {
	Client     *compat.Client
	Model      string
	Dimensions int
}

// EmbeddingService calls /embeddings in batches.
type EmbeddingService struct {
	client     *compat.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewEmbeddingService returns a service for cfg.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("embedding: %w", domain.ErrEmbeddingUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     cfg.Client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed embeds one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts, splitting the input into
// requests of at most MaxInputsPerRequest texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxInputsPerRequest {
		end := min(start+MaxInputsPerRequest, len(texts))
		part, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, part...)
	}
	return embeddings, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{
		Model:          s.model,
		Input:          texts,
		EncodingFormat: "float",
	}

	var resp embeddingResponse
	if err := s.client.PostJSON(ctx, "embed", "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%s: got %d embeddings for %d texts", s.client.Provider(), len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("%s: embedding index %d out of range", s.client.Provider(), data.Index)
		}
		embedding := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			embedding[i] = float32(v)
		}
		embeddings[data.Index] = embedding
	}
	for i, e := range embeddings {
		if e == nil {
			return nil, fmt.Errorf("%s: missing embedding for input %d", s.client.Provider(), i)
		}
	}

	return embeddings, nil
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping validates the API key against the /models endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Get(ctx, "ping", "/models")
}

// Close is a no-op; the shared client owns the connection pool.
func (s *EmbeddingService) Close() error { return nil }
