// Package compat is the HTTP client shared by the adapters that talk to
// an OpenAI-compatible provider API such as DashScope compatible-mode.
package compat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Default configuration values.
const (
	DefaultProvider = "dashscope"
	DefaultTimeout  = 30 * time.Second
)

// Config holds the connection settings for an OpenAI-compatible API.
type Config struct {
	// Provider names the remote service in errors and metrics.
	Provider string

	// APIKey is sent as a bearer token (required).
	APIKey string

	// BaseURL is the API root, e.g. https://dashscope.aliyuncs.com/compatible-mode/v1.
	BaseURL string

	// Timeout bounds each HTTP request (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64

	// Metrics receives one observation per request. Optional.
	Metrics driven.Metrics

	// HTTPClient overrides the default client. Optional.
	HTTPClient *http.Client
}

// Client performs JSON requests against the provider.
type Client struct {
	http     *http.Client
	provider string
	baseURL  string
	apiKey   string
	limiter  *rate.Limiter
	metrics  driven.Metrics
}

// New creates a client. A missing API key wraps domain.ErrMissingCredential.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName(cfg.Provider), domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = driven.NopMetrics{}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		http:     httpClient,
		provider: providerName(cfg.Provider),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		metrics:  cfg.Metrics,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

func providerName(p string) string {
	if p == "" {
		return DefaultProvider
	}
	return p
}

// Provider returns the provider name.
func (c *Client) Provider() string {
	return c.provider
}

// PostJSON sends in as a JSON body to path and decodes the response into out.
// Non-2xx responses and transport failures are returned as *domain.ProviderError.
func (c *Client) PostJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, path, body, out)
}

// Get performs a GET request to path and discards the body.
func (c *Client) Get(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodGet, path, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	status := "error"
	defer func() {
		c.metrics.ObserveProviderCall(op, status, time.Since(start))
	}()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &domain.ProviderError{Provider: c.provider, Err: err}
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{Provider: c.provider, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ProviderError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// errorBody covers the OpenAI error envelope and the DashScope native one.
type errorBody struct {
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func errorMessage(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		switch {
		case eb.Error != nil && eb.Error.Message != "":
			return eb.Error.Message
		case eb.Message != "":
			return eb.Message
		}
	}
	msg := strings.TrimSpace(string(data))
	if r := []rune(msg); len(r) > 200 {
		msg = string(r[:200]) + "..."
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}
