package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/regula/internal/core/domain"
)

func noEnv(string) (string, bool) { return "", false }

func newTestSettings(values map[string]any) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(values)
	service := NewSettingsService(store)
	service.SetEnvLookup(noEnv)
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Models, settings.Models)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Ingest, settings.Ingest)
	assert.Equal(t, defaults.Retry, settings.Retry)
	assert.Equal(t, defaults.Regulations, settings.Regulations)
	assert.Equal(t, defaults.ChapterTitles, settings.ChapterTitles)
	assert.Equal(t, "127.0.0.1:8000", settings.ServerAddr)
	assert.Equal(t, 60*time.Second, settings.AskTimeout)
	assert.Empty(t, settings.Provider.APIKey)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, _ := newTestSettings(map[string]any{
		"models.generation_model":        "qwen-plus",
		"retrieval.top_k":                int64(5),
		"retrieval.similarity_threshold": 0.75,
		"provider.timeout_seconds":       int64(12),
		"retry.min_wait_seconds":         0.5,
		"cache.redis_url":                "redis://localhost:6379/0",
		"storage.data_dir":               "/tmp/regula",
	})

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "qwen-plus", settings.Models.GenerationModel)
	assert.Equal(t, "text-embedding-v2", settings.Models.EmbeddingModel)
	assert.Equal(t, 5, settings.Retrieval.TopK)
	assert.InDelta(t, 0.75, settings.Retrieval.SimilarityThreshold, 1e-9)
	assert.Equal(t, 12*time.Second, settings.Provider.Timeout)
	assert.Equal(t, 500*time.Millisecond, settings.Retry.MinWait)
	assert.Equal(t, "redis://localhost:6379/0", settings.Cache.RedisURL)
	assert.Equal(t, "/tmp/regula", settings.DataDir)
}

func TestSettingsService_Get_ReadsAPIKeyFromEnvironment(t *testing.T) {
	service, _ := newTestSettings(nil)
	service.SetEnvLookup(func(key string) (string, bool) {
		if key == APIKeyEnv {
			return " sk-test \n", true
		}
		return "", false
	})

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-test", settings.Provider.APIKey)
	assert.NoError(t, settings.RequireAPIKey())
}

func TestSettingsService_Get_RegulationArray(t *testing.T) {
	service, _ := newTestSettings(map[string]any{
		"regulations": []any{
			map[string]any{"name": "GB50025_2022", "path": "data/sslg.txt", "abbr": "sslg"},
			map[string]any{"name": "GB50016_2014", "path": "data/jzsj.txt", "abbr": "jzsj"},
		},
	})

	settings, err := service.Get()

	require.NoError(t, err)
	require.Len(t, settings.Regulations, 2)
	assert.Equal(t, "sslg", settings.Regulations[0].Abbr)
	assert.Equal(t, "data/jzsj.txt", settings.Regulations[1].Path)
}

func TestSettingsService_Get_RegulationTables(t *testing.T) {
	service, _ := newTestSettings(map[string]any{
		"regulations.sslg.name": "GB50025_2022",
		"regulations.sslg.path": "data/sslg.txt",
		"regulations.jzsj.name": "GB50016_2014",
		"regulations.jzsj.path": "data/jzsj.txt",
	})

	settings, err := service.Get()

	require.NoError(t, err)
	require.Len(t, settings.Regulations, 2)
	assert.Equal(t, domain.Regulation{Name: "GB50016_2014", Path: "data/jzsj.txt", Abbr: "jzsj"}, settings.Regulations[0])
	assert.Equal(t, "sslg", settings.Regulations[1].Abbr)
}

func TestSettingsService_Get_ChapterTitles(t *testing.T) {
	service, _ := newTestSettings(map[string]any{
		"chapter_titles.5": "===== 第5章 防火 =====",
	})

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"5": "===== 第5章 防火 ====="}, settings.ChapterTitles)
}

func TestSettingsService_Get_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"zero top k", map[string]any{"retrieval.top_k": int64(0)}},
		{"threshold above one", map[string]any{"retrieval.similarity_threshold": 1.5}},
		{"negative batch", map[string]any{"ingest.batch_size": int64(-1)}},
		{"max wait below min", map[string]any{"retry.max_wait_seconds": int64(1)}},
		{"regulation without abbr", map[string]any{
			"regulations": []any{map[string]any{"name": "x", "path": "x.txt"}},
		}},
		{"duplicate abbr", map[string]any{
			"regulations": []any{
				map[string]any{"name": "a", "path": "a.txt", "abbr": "dup"},
				map[string]any{"name": "b", "path": "b.txt", "abbr": "dup"},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettings(tt.values)

			_, err := service.Get()

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettings(nil)

	require.NoError(t, service.Set("retrieval.top_k", "4"))
	require.NoError(t, service.Set("retrieval.similarity_threshold", "0.7"))
	require.NoError(t, service.Set("server.addr", "0.0.0.0:9000"))
	require.NoError(t, service.Set("retry.max_attempts", 5))

	assert.Equal(t, 4, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.7, store.GetFloat("retrieval.similarity_threshold"), 1e-9)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, settings.Retrieval.TopK)
	assert.Equal(t, "0.0.0.0:9000", settings.ServerAddr)
	assert.Equal(t, 5, settings.Retry.MaxAttempts)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service, _ := newTestSettings(nil)

	assert.ErrorIs(t, service.Set("search.mode", "hybrid"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("retrieval.top_k", "three"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("server.addr", 8000), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettings(nil)

	keys := service.Keys()

	assert.Contains(t, keys, "retrieval.top_k")
	assert.Contains(t, keys, "ask.timeout_seconds")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_ConfigPath(t *testing.T) {
	service, _ := newTestSettings(nil)

	assert.Equal(t, ":memory:", service.ConfigPath())
	assert.Equal(t, domain.DefaultSettings().Models, service.GetDefaults().Models)
}
