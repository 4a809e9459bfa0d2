// Package openai provides an LLM service adapter for OpenAI-compatible chat
// completion APIs, used with DashScope qwen-turbo.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/regula/internal/adapters/driven/compat"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "qwen-turbo"

// Config configures NewLLMService. Client is required.
type Config struct {
	Client *compat.Client
	Model  string
}

// LLMService sends single-turn prompts to /chat/completions.
type LLMService struct {
	client *compat.Client
	model  string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stop        []string  `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// NewLLMService returns a service for cfg.Model, or DefaultModel.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("llm: %w", domain.ErrLLMUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &LLMService{client: cfg.Client, model: cfg.Model}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := completionRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   max(opts.MaxTokens, 0),
		Temperature: opts.Temperature,
		Stop:        opts.Stop,
	}

	var resp completionResponse
	if err := s.client.PostJSON(ctx, "generate", "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", s.client.Provider())
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the chat model.
func (s *LLMService) ModelName() string { return s.model }

// Ping validates the API key against the /models endpoint.
func (s *LLMService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Get(ctx, "ping", "/models")
}

// Close is a no-op; the shared client owns the connection pool.
func (s *LLMService) Close() error { return nil }
