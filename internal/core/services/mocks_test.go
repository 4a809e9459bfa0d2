package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// mockLLM answers prompts with respond, or "kw1 kw2" when respond is nil.
type mockLLM struct {
	mu      sync.Mutex
	prompts []string
	opts    []driven.GenerateOptions
	respond func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.respond != nil {
		return m.respond(ctx, prompt)
	}
	return " kw1 kw2 \n", nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockEmbedder returns vectors from vectors by text, or a fixed vector.
type mockEmbedder struct {
	mu      sync.Mutex
	dims    int
	texts   []string
	vectors map[string][]float32
	err     error
	failOn  map[string]bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, texts...)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.failOn[t] {
			return nil, &domain.ProviderError{Provider: "mock", StatusCode: 400, Message: "bad input"}
		}
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dims)
	v[0] = 1
	return v
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// mockVectorIndex returns fixed hits.
type mockVectorIndex struct {
	hits   []driven.VectorHit
	err    error
	k      int
	query  []float32
	stored []driven.VectorRecord
}

func (m *mockVectorIndex) Upsert(_ context.Context, records []driven.VectorRecord) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, records...)
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	m.query, m.k = query, k
	return m.hits, m.err
}

func (m *mockVectorIndex) Count(context.Context) (int, error) { return len(m.stored), nil }
func (m *mockVectorIndex) Close() error { return nil }

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// recordingMetrics keeps the ask and index observations.
type recordingMetrics struct {
	driven.NopMetrics
	mu         sync.Mutex
	asks       []string
	candidates []int
	stored     int
	failed     int
}

func (m *recordingMetrics) ObserveAsk(status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asks = append(m.asks, status)
}

func (m *recordingMetrics) ObserveCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, n)
}

func (m *recordingMetrics) ObserveIndexed(stored, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored += stored
	m.failed += failed
}

func hit(id string, distance float64) driven.VectorHit {
	return driven.VectorHit{
		ChunkID:  "sslg_" + id + "_1",
		Distance: distance,
		Content:  id + " 条文内容",
		Metadata: domain.ChunkMetadata{
			ArticleID: id,
			SpecName:  "GB50025_2022_宿舍、旅馆建筑项目规范",
			SpecAbbr:  "sslg",
			Chapter:   domain.ChapterOf(id),
			Type:      domain.RecordArticle,
		},
	}
}
