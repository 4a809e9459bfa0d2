package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the DashScope OpenAI-compatible endpoint.
const DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// ModelSettings holds the provider model configuration.
type ModelSettings struct {
	// EmbeddingModel is the text embedding model id.
	EmbeddingModel string

	// GenerationModel is the chat completion model id.
	GenerationModel string

	// EmbeddingDimension is the expected vector length.
	EmbeddingDimension int

	// QueryExpandTemperature is used when generating retrieval keywords.
	QueryExpandTemperature float64

	// AnswerTemperature is used when composing the final answer.
	AnswerTemperature float64
}

// ProviderSettings holds the remote provider connection configuration.
type ProviderSettings struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string

	// APIKey is read from DASHSCOPE_API_KEY, never from the config file.
	APIKey string

	// Timeout bounds each HTTP call.
	Timeout time.Duration

	// RequestsPerSecond limits provider calls; 0 means unlimited.
	RequestsPerSecond float64
}

// RetrievalSettings holds the retrieval parameters.
type RetrievalSettings struct {
	// NResults is the number of nearest neighbours requested from the index.
	NResults int

	// TopK is the number of candidates kept after filtering.
	TopK int

	// SimilarityThreshold is the minimum similarity a candidate must reach.
	SimilarityThreshold float64
}

// IngestSettings holds the offline pipeline configuration.
type IngestSettings struct {
	MaxChunkLength   int
	BatchSize        int
	ChunksPath       string
	CleanedPath      string
	FailedChunksPath string
}

// CacheSettings holds the embedding cache configuration.
type CacheSettings struct {
	// Size is the maximum number of locally cached vectors.
	Size int

	// TTL is how long a cached vector stays valid.
	TTL time.Duration

	// RedisURL enables the shared second level when set.
	RedisURL string
}

// RetrySettings holds the provider retry policy.
type RetrySettings struct {
	MaxAttempts int
	Multiplier  float64
	MinWait     time.Duration
	MaxWait     time.Duration
}

// Settings holds all application settings.
type Settings struct {
	Models    ModelSettings
	Provider  ProviderSettings
	Retrieval RetrievalSettings
	Ingest    IngestSettings
	Cache     CacheSettings
	Retry     RetrySettings

	// Regulations are processed in this order.
	Regulations []Regulation

	// ChapterTitles maps a chapter numeral to its title line.
	ChapterTitles map[string]string

	// ServerAddr is the HTTP listen address.
	ServerAddr string

	// AskTimeout bounds one retrieve+compose call.
	AskTimeout time.Duration

	// DataDir holds the vector index database.
	DataDir string
}

// DefaultSettings returns the settings used when no config file overrides them.
func DefaultSettings() Settings {
	return Settings{
		Models: ModelSettings{
			EmbeddingModel:         "text-embedding-v2",
			GenerationModel:        "qwen-turbo",
			EmbeddingDimension:     1536,
			QueryExpandTemperature: 0.3,
			AnswerTemperature:      0.2,
		},
		Provider: ProviderSettings{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Retrieval: RetrievalSettings{
			NResults:            5,
			TopK:                3,
			SimilarityThreshold: 0.6,
		},
		Ingest: IngestSettings{
			MaxChunkLength:   400,
			BatchSize:        100,
			ChunksPath:       "data/chunks.json",
			CleanedPath:      "data/chunks_cleaned.json",
			FailedChunksPath: "failed_chunks.json",
		},
		Cache: CacheSettings{
			Size: 1024,
			TTL:  24 * time.Hour,
		},
		Retry: RetrySettings{
			MaxAttempts: 3,
			Multiplier:  1,
			MinWait:     2 * time.Second,
			MaxWait:     10 * time.Second,
		},
		Regulations:   DefaultRegulations("data/processed"),
		ChapterTitles: DefaultChapterTitles(),
		ServerAddr:    "127.0.0.1:8000",
		AskTimeout:    60 * time.Second,
		DataDir:       "vector_store",
	}
}

// DefaultRegulations returns the bundled regulation corpus rooted at dir.
func DefaultRegulations(dir string) []Regulation {
	names := []struct{ name, abbr string }{
		{"GB50016_2014_建筑设计防火规范", "jzsj"},
		{"GB50352_2019_民用建筑设计统一标准", "myjz"},
		{"GB50067_2014_汽车库、修车库、停车场设计防火规范", "qck"},
		{"GB50038_2025_住宅项目规范", "zzxm"},
		{"GB50025_2022_宿舍、旅馆建筑项目规范", "sslg"},
	}
	regs := make([]Regulation, 0, len(names))
	for _, n := range names {
		regs = append(regs, Regulation{
			Name: n.name,
			Path: filepath.Join(dir, n.name+".txt"),
			Abbr: n.abbr,
		})
	}
	return regs
}

// DefaultChapterTitles returns the chapter headings of the dormitory/hotel code.
func DefaultChapterTitles() map[string]string {
	return map[string]string{
		"2": "===== 第2章 基本规定 =====",
		"3": "===== 第3章 宿舍 =====",
		"4": "===== 第4章 旅馆 =====",
	}
}

// Validate checks the settings for values the pipelines cannot run with.
func (s Settings) Validate() error {
	if s.Models.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: models.embedding_dimension must be positive", ErrInvalidInput)
	}
	if s.Retrieval.NResults <= 0 {
		return fmt.Errorf("%w: retrieval.n_results must be positive", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidInput)
	}
	if s.Retrieval.SimilarityThreshold < 0 || s.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: retrieval.similarity_threshold must be in [0, 1]", ErrInvalidInput)
	}
	if s.Ingest.MaxChunkLength <= 0 {
		return fmt.Errorf("%w: ingest.max_chunk_length must be positive", ErrInvalidInput)
	}
	if s.Ingest.BatchSize <= 0 {
		return fmt.Errorf("%w: ingest.batch_size must be positive", ErrInvalidInput)
	}
	if s.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: retry.max_attempts must be positive", ErrInvalidInput)
	}
	if s.Retry.MaxWait < s.Retry.MinWait {
		return fmt.Errorf("%w: retry.max_wait_seconds is below retry.min_wait_seconds", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(s.Regulations))
	for _, r := range s.Regulations {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Abbr] {
			return fmt.Errorf("%w: duplicate regulation abbreviation %q", ErrInvalidInput, r.Abbr)
		}
		seen[r.Abbr] = true
	}
	return nil
}

// RequireAPIKey returns ErrMissingCredential when no provider key is set.
func (s Settings) RequireAPIKey() error {
	if s.Provider.APIKey == "" {
		return fmt.Errorf("%w: set DASHSCOPE_API_KEY in the environment or a .env file", ErrMissingCredential)
	}
	return nil
}
