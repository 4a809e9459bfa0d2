package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/services"
)

type mockIngestionService struct {
	normalised []string
	run        *domain.ChunkRun
	buildErr   error
	builds     int
	report     *domain.ValidationReport
	clean      *domain.CleanReport
	cleanErr   error
}

func (m *mockIngestionService) NormaliseFile(_ context.Context, in, out string) error {
	m.normalised = []string{in, out}
	return nil
}

func (m *mockIngestionService) BuildChunks(context.Context) (*domain.ChunkRun, error) {
	m.builds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	return m.run, nil
}

func (m *mockIngestionService) Validate(context.Context) *domain.ValidationReport {
	return m.report
}

func (m *mockIngestionService) Clean(context.Context) (*domain.CleanReport, error) {
	return m.clean, m.cleanErr
}

type mockIndexService struct {
	report  *domain.IndexReport
	last    *domain.IndexReport
	lastErr error
	force   bool
	workers int
}

func (m *mockIndexService) Build(_ context.Context, force bool) (*domain.IndexReport, error) {
	m.force = force
	return m.report, nil
}

func (m *mockIndexService) LastRun(context.Context) (*domain.IndexReport, error) {
	if m.lastErr != nil {
		return nil, m.lastErr
	}
	return m.last, nil
}

func (m *mockIndexService) SetWorkers(n int) {
	m.workers = n
}

type mockAskService struct {
	question string
	answer   *domain.Answer
	err      error
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAskService) Regulations() []domain.Regulation {
	return domain.DefaultSettings().Regulations
}

type testServices struct {
	ingestion *mockIngestionService
	index     *mockIndexService
	ask       *mockAskService
	settings  *services.SettingsService
	store     *memory.ConfigStore
}

func sampleChunkRun() *domain.ChunkRun {
	return &domain.ChunkRun{
		Regulations: []domain.RegulationSummary{
			{Name: "GB50016_2014_建筑设计防火规范", Abbr: "jzsj", Records: 120, Chunks: 143},
			{Name: "GB50025_2022_宿舍、旅馆建筑项目规范", Abbr: "sslg", Skipped: true},
		},
		Chunks:     make([]domain.Chunk, 143),
		OutputPath: "data/chunks.json",
	}
}

func sampleIndexReport() *domain.IndexReport {
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return &domain.IndexReport{
		RunID:      "run-1",
		Total:      143,
		Indexed:    142,
		Failed:     []domain.FailedChunk{{ChunkID: "jzsj_5.1.1_1", Error: "rate limited"}},
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
}

func sampleAnswer() *domain.Answer {
	return &domain.Answer{
		Question: "居室净高？",
		Text:     "根据GB50025_2022第5.1.2条，居室净高不应低于2.60m。",
		References: []domain.RetrievedCandidate{
			{Similarity: 0.8234, ArticleID: "5.1.2", SpecName: "GB50025_2022_宿舍、旅馆建筑项目规范", SpecAbbr: "sslg"},
		},
	}
}

// setupTestServices installs mocks for every service and returns a
// cleanup function restoring the previous state.
func setupTestServices() (*testServices, func()) {
	store := memory.NewConfigStore(nil)
	settings := services.NewSettingsService(store)
	settings.SetEnvLookup(func(string) (string, bool) { return "", false })

	ts := &testServices{
		ingestion: &mockIngestionService{
			run:    sampleChunkRun(),
			report: domain.NewValidationReport(),
			clean:  &domain.CleanReport{Chunks: 143, Changed: 2, Abnormal: []string{"\u200b"}, OutputPath: "data/chunks_cleaned.json"},
		},
		index:    &mockIndexService{report: sampleIndexReport(), last: sampleIndexReport()},
		ask:      &mockAskService{answer: sampleAnswer()},
		settings: settings,
		store:    store,
	}

	prevSettings, prevIngestion, prevIndex, prevAsk := settingsService, ingestionService, indexService, askService
	prevEnv := envFile
	settingsService = ts.settings
	ingestionService = ts.ingestion
	indexService = ts.index
	askService = ts.ask
	envFile = ""

	return ts, func() {
		settingsService, ingestionService, indexService, askService = prevSettings, prevIngestion, prevIndex, prevAsk
		envFile = prevEnv
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// resetFlags restores every changed flag on cmd and its children.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
