package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// APIKeyEnv is the environment variable holding the provider key.
//
//nolint:gosec // G101: This is an environment variable name, not a credential.
const APIKeyEnv = "DASHSCOPE_API_KEY"

// Config keys for settings storage.
const (
	keyEmbeddingModel      = "models.embedding_model"
	keyGenerationModel     = "models.generation_model"
	keyEmbeddingDimension  = "models.embedding_dimension"
	keyExpandTemperature   = "models.query_expand_temperature"
	keyAnswerTemperature   = "models.answer_temperature"
	keyProviderBaseURL     = "provider.base_url"
	keyProviderTimeout     = "provider.timeout_seconds"
	keyProviderRPS         = "provider.requests_per_second"
	keyRetrievalNResults   = "retrieval.n_results"
	keyRetrievalTopK       = "retrieval.top_k"
	keyRetrievalThreshold  = "retrieval.similarity_threshold"
	keyIngestMaxLength     = "ingest.max_chunk_length"
	keyIngestBatchSize     = "ingest.batch_size"
	keyIngestChunksPath    = "ingest.chunks_path"
	keyIngestCleanedPath   = "ingest.cleaned_path"
	keyIngestFailedPath    = "ingest.failed_chunks_path"
	keyCacheSize           = "cache.size"
	keyCacheTTL            = "cache.ttl_seconds"
	keyCacheRedisURL       = "cache.redis_url"
	keyRetryMaxAttempts    = "retry.max_attempts"
	keyRetryMultiplier     = "retry.multiplier"
	keyRetryMinWait        = "retry.min_wait_seconds"
	keyRetryMaxWait        = "retry.max_wait_seconds"
	keyServerAddr          = "server.addr"
	keyAskTimeout          = "ask.timeout_seconds"
	keyStorageDataDir      = "storage.data_dir"
	keyRegulations         = "regulations"
	keyChapterTitlesPrefix = "chapter_titles"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

// settableKeys lists the scalar keys accepted by Set.
var settableKeys = map[string]valueKind{
	keyEmbeddingModel:     kindString,
	keyGenerationModel:    kindString,
	keyEmbeddingDimension: kindInt,
	keyExpandTemperature:  kindFloat,
	keyAnswerTemperature:  kindFloat,
	keyProviderBaseURL:    kindString,
	keyProviderTimeout:    kindFloat,
	keyProviderRPS:        kindFloat,
	keyRetrievalNResults:  kindInt,
	keyRetrievalTopK:      kindInt,
	keyRetrievalThreshold: kindFloat,
	keyIngestMaxLength:    kindInt,
	keyIngestBatchSize:    kindInt,
	keyIngestChunksPath:   kindString,
	keyIngestCleanedPath:  kindString,
	keyIngestFailedPath:   kindString,
	keyCacheSize:          kindInt,
	keyCacheTTL:           kindFloat,
	keyCacheRedisURL:      kindString,
	keyRetryMaxAttempts:   kindInt,
	keyRetryMultiplier:    kindFloat,
	keyRetryMinWait:       kindFloat,
	keyRetryMaxWait:       kindFloat,
	keyServerAddr:         kindString,
	keyAskTimeout:         kindFloat,
	keyStorageDataDir:     kindString,
}

// SettingsService reads application settings from the config store,
// falling back to defaults for every missing key.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// The provider key is read from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup used for the provider key.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	if lookup != nil {
		s.lookupEnv = lookup
	}
}

// Get returns the current settings. It fails when the configured
// values cannot drive the pipelines.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Models: domain.ModelSettings{
			EmbeddingModel:         s.getString(keyEmbeddingModel, d.Models.EmbeddingModel),
			GenerationModel:        s.getString(keyGenerationModel, d.Models.GenerationModel),
			EmbeddingDimension:     s.getInt(keyEmbeddingDimension, d.Models.EmbeddingDimension),
			QueryExpandTemperature: s.getFloat(keyExpandTemperature, d.Models.QueryExpandTemperature),
			AnswerTemperature:      s.getFloat(keyAnswerTemperature, d.Models.AnswerTemperature),
		},
		Provider: domain.ProviderSettings{
			BaseURL:           s.getString(keyProviderBaseURL, d.Provider.BaseURL),
			Timeout:           s.getSeconds(keyProviderTimeout, d.Provider.Timeout),
			RequestsPerSecond: s.getFloat(keyProviderRPS, d.Provider.RequestsPerSecond),
		},
		Retrieval: domain.RetrievalSettings{
			NResults:            s.getInt(keyRetrievalNResults, d.Retrieval.NResults),
			TopK:                s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
			SimilarityThreshold: s.getFloat(keyRetrievalThreshold, d.Retrieval.SimilarityThreshold),
		},
		Ingest: domain.IngestSettings{
			MaxChunkLength:   s.getInt(keyIngestMaxLength, d.Ingest.MaxChunkLength),
			BatchSize:        s.getInt(keyIngestBatchSize, d.Ingest.BatchSize),
			ChunksPath:       s.getString(keyIngestChunksPath, d.Ingest.ChunksPath),
			CleanedPath:      s.getString(keyIngestCleanedPath, d.Ingest.CleanedPath),
			FailedChunksPath: s.getString(keyIngestFailedPath, d.Ingest.FailedChunksPath),
		},
		Cache: domain.CacheSettings{
			Size:     s.getInt(keyCacheSize, d.Cache.Size),
			TTL:      s.getSeconds(keyCacheTTL, d.Cache.TTL),
			RedisURL: s.configStore.GetString(keyCacheRedisURL),
		},
		Retry: domain.RetrySettings{
			MaxAttempts: s.getInt(keyRetryMaxAttempts, d.Retry.MaxAttempts),
			Multiplier:  s.getFloat(keyRetryMultiplier, d.Retry.Multiplier),
			MinWait:     s.getSeconds(keyRetryMinWait, d.Retry.MinWait),
			MaxWait:     s.getSeconds(keyRetryMaxWait, d.Retry.MaxWait),
		},
		Regulations:   s.getRegulations(d.Regulations),
		ChapterTitles: s.getChapterTitles(d.ChapterTitles),
		ServerAddr:    s.getString(keyServerAddr, d.ServerAddr),
		AskTimeout:    s.getSeconds(keyAskTimeout, d.AskTimeout),
		DataDir:       s.getString(keyStorageDataDir, d.DataDir),
	}

	if key, ok := s.lookupEnv(APIKeyEnv); ok {
		settings.Provider.APIKey = strings.TrimSpace(key)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set stores one scalar setting. String values are parsed to the
// key's type, so CLI input can be passed through unchanged.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	converted, err := convertValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, converted); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// Keys returns the keys accepted by Set in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns the default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ConfigPath returns the location of the backing config file.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func convertValue(kind valueKind, value any) (any, error) {
	str, isString := value.(string)
	switch kind {
	case kindInt:
		if isString {
			n, err := strconv.Atoi(strings.TrimSpace(str))
			if err != nil {
				return nil, fmt.Errorf("expected an integer, got %q", str)
			}
			return int64(n), nil
		}
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}
		return nil, fmt.Errorf("expected an integer, got %T", value)
	case kindFloat:
		if isString {
			f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				return nil, fmt.Errorf("expected a number, got %q", str)
			}
			return f, nil
		}
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, fmt.Errorf("expected a number, got %T", value)
	default:
		if !isString {
			return nil, fmt.Errorf("expected a string, got %T", value)
		}
		return str, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return time.Duration(s.configStore.GetFloat(key) * float64(time.Second))
}

// getRegulations reads [[regulations]] entries in file order. Table-style
// entries (regulations.<abbr>.name/path) are accepted too, ordered by abbr.
func (s *SettingsService) getRegulations(defaultVal []domain.Regulation) []domain.Regulation {
	if raw, ok := s.configStore.Get(keyRegulations); ok {
		if list, ok := raw.([]any); ok && len(list) > 0 {
			regs := make([]domain.Regulation, 0, len(list))
			for _, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				regs = append(regs, domain.Regulation{
					Name: stringField(m, "name"),
					Path: stringField(m, "path"),
					Abbr: stringField(m, "abbr"),
				})
			}
			return regs
		}
	}

	fields := s.configStore.GetStringMap(keyRegulations)
	if len(fields) == 0 {
		return defaultVal
	}
	byAbbr := make(map[string]*domain.Regulation)
	for key, val := range fields {
		abbr, field, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		reg, exists := byAbbr[abbr]
		if !exists {
			reg = &domain.Regulation{Abbr: abbr}
			byAbbr[abbr] = reg
		}
		switch field {
		case "name":
			reg.Name = val
		case "path":
			reg.Path = val
		}
	}
	abbrs := make([]string, 0, len(byAbbr))
	for abbr := range byAbbr {
		abbrs = append(abbrs, abbr)
	}
	sort.Strings(abbrs)
	regs := make([]domain.Regulation, 0, len(abbrs))
	for _, abbr := range abbrs {
		regs = append(regs, *byAbbr[abbr])
	}
	return regs
}

func (s *SettingsService) getChapterTitles(defaultVal map[string]string) map[string]string {
	titles := s.configStore.GetStringMap(keyChapterTitlesPrefix)
	if len(titles) == 0 {
		return defaultVal
	}
	return titles
}

func stringField(m map[string]any, key string) string {
	str, _ := m[key].(string)
	return str
}
