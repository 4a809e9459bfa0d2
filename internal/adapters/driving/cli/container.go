package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/regula/internal/adapters/driven/ai"
	"github.com/custodia-labs/regula/internal/adapters/driven/config/file"
	"github.com/custodia-labs/regula/internal/adapters/driven/metrics"
	"github.com/custodia-labs/regula/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/regula/internal/adapters/driven/storage/textfile"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
	"github.com/custodia-labs/regula/internal/core/services"
	"github.com/custodia-labs/regula/internal/logger"
	"github.com/custodia-labs/regula/internal/normalisers"
	"github.com/custodia-labs/regula/internal/normalisers/regtext"
	"github.com/custodia-labs/regula/internal/postprocessors"
	"github.com/custodia-labs/regula/internal/postprocessors/chunker"
	"github.com/custodia-labs/regula/internal/postprocessors/cleaner"
	"github.com/custodia-labs/regula/internal/postprocessors/segmenter"
	"github.com/custodia-labs/regula/internal/postprocessors/validator"
)

// Services used by the commands. Built lazily on first use so commands
// that never call the provider run without an API key. Tests assign them
// directly.
var (
	settingsService  driving.SettingsService
	ingestionService driving.IngestionService
	indexService     driving.IndexService
	askService       driving.AskService

	collector *metrics.Collector
	providers *ai.InitResult

	closeOnce sync.Once
)

// checkProviders pings the embedding and generation services.
var checkProviders = func(ctx context.Context) error {
	if _, err := requireProviders(); err != nil {
		return err
	}
	return providers.Check(ctx)
}

func requireSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, err
	}
	settingsService = services.NewSettingsService(store)
	return settingsService, nil
}

func loadSettings() (*domain.Settings, error) {
	svc, err := requireSettingsService()
	if err != nil {
		return nil, err
	}
	return svc.Get()
}

func requireIngestion() (driving.IngestionService, error) {
	if ingestionService != nil {
		return ingestionService, nil
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	maxLen := settings.Ingest.MaxChunkLength
	deps := services.IngestionDeps{
		Normaliser: normalisers.NewPipeline(regtext.Passes(settings.ChapterTitles)...),
		Source:     textfile.NewSource(),
		Pipeline: postprocessors.NewPipeline(
			segmenter.New(logger.Named("segmenter")),
			chunker.New(chunker.WithMaxLength(maxLen)),
		),
		Chunks:    jsonfile.NewChunkStore(settings.Ingest.ChunksPath),
		Validator: validator.New(maxLen),
		Cleaner:   cleaner.New(logger.Named("cleaner")),
	}
	ingestionService = services.NewIngestionService(deps, settings)
	return ingestionService, nil
}

func requireCollector() *metrics.Collector {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return collector
}

func requireProviders() (*ai.InitResult, error) {
	if providers != nil {
		return providers, nil
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	result, err := ai.Init(ai.Options{
		Settings:      settings,
		Logger:        logger.L(),
		Metrics:       requireCollector(),
		InMemoryIndex: inMemory,
	})
	if err != nil {
		return nil, err
	}
	providers = result
	return providers, nil
}

func requireIndex() (driving.IndexService, error) {
	if indexService != nil {
		return indexService, nil
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	p, err := requireProviders()
	if err != nil {
		return nil, err
	}

	deps := services.IndexDeps{
		Chunks:    jsonfile.NewChunkStore(settings.Ingest.ChunksPath),
		Validator: validator.New(settings.Ingest.MaxChunkLength),
		Embedder:  p.EmbeddingService,
		Index:     p.VectorIndex,
		Failed:    jsonfile.NewFailedChunkLog(settings.Ingest.FailedChunksPath),
		Runs:      p.IndexRuns,
		Metrics:   requireCollector(),
	}
	indexService = services.NewIndexService(deps, settings)
	return indexService, nil
}

func requireAsk() (driving.AskService, error) {
	if askService != nil {
		return askService, nil
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	p, err := requireProviders()
	if err != nil {
		return nil, err
	}

	retriever := services.NewRetriever(p.LLMService, p.EmbeddingService, p.VectorIndex, settings)
	composer := services.NewComposer(p.LLMService, settings)
	svc := services.NewAskService(retriever, composer, settings)
	svc.SetMetrics(requireCollector())
	if p.PromptStore != nil {
		svc.SetPromptStore(p.PromptStore)
	}
	askService = svc
	return askService, nil
}

// closeServices releases provider connections and the vector index.
func closeServices() {
	closeOnce.Do(func() {
		if providers == nil {
			return
		}
		if err := providers.Close(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("closing services: %v", err)
		}
	})
}
