package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
	"github.com/custodia-labs/regula/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// DefaultIndexWorkers is the number of batches embedded concurrently.
const DefaultIndexWorkers = 4

// IndexDeps holds the ports an index build runs on.
type IndexDeps struct {
	Chunks    driven.ChunkStore
	Validator driven.ChunkValidator
	Embedder  driven.EmbeddingService
	Index     driven.VectorIndex
	Failed    driven.FailedChunkLog
	Runs      driven.IndexRunStore
	Metrics   driven.Metrics
}

// IndexService embeds the persisted chunk list into the vector index.
type IndexService struct {
	deps      IndexDeps
	batchSize int
	workers   int
	now       func() time.Time
}

// NewIndexService creates an index service. Runs, Failed and Metrics are optional.
func NewIndexService(deps IndexDeps, settings *domain.Settings) *IndexService {
	if deps.Metrics == nil {
		deps.Metrics = driven.NopMetrics{}
	}
	return &IndexService{
		deps:      deps,
		batchSize: settings.Ingest.BatchSize,
		workers:   DefaultIndexWorkers,
		now:       time.Now,
	}
}

// SetWorkers sets how many batches are embedded concurrently.
func (s *IndexService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// Build embeds and upserts every chunk. A chunk file with validation
// errors is refused unless force is set. Chunks that cannot be embedded
// or stored are reported, not fatal.
func (s *IndexService) Build(ctx context.Context, force bool) (*domain.IndexReport, error) {
	if s.deps.Embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.deps.Index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	if s.deps.Validator != nil {
		report := s.deps.Validator.ValidateFile(s.deps.Chunks.Path())
		if !report.OK() {
			if !force {
				return nil, fmt.Errorf("%w: chunk file has %d validation errors, run validate or use --force",
					domain.ErrInvalidInput, report.ErrorCount)
			}
			logger.Warn("Indexing despite %d validation errors", report.ErrorCount)
		}
	}

	chunks, err := s.deps.Chunks.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	report := &domain.IndexReport{
		RunID:     uuid.New().String(),
		Total:     len(chunks),
		Failed:    []domain.FailedChunk{},
		StartedAt: s.now(),
	}
	logger.Section("Index build " + report.RunID)

	var pending []domain.Chunk
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			report.Failed = append(report.Failed, domain.FailedChunk{ChunkID: c.ChunkID, Error: domain.ErrEmptyText.Error()})
			continue
		}
		pending = append(pending, c)
	}

	if err := s.embedAll(ctx, pending, report); err != nil {
		return nil, err
	}
	report.FinishedAt = s.now()

	s.deps.Metrics.ObserveIndexed(report.Indexed, len(report.Failed))
	logger.Info("Indexed %d of %d chunks, %d failed, in %s",
		report.Indexed, report.Total, len(report.Failed), report.Duration())

	if s.deps.Failed != nil {
		if err := s.deps.Failed.Write(ctx, report.RunID, report.Failed); err != nil {
			return nil, fmt.Errorf("write failed chunks: %w", err)
		}
	}
	if s.deps.Runs != nil {
		if err := s.deps.Runs.SaveRun(ctx, *report); err != nil {
			return nil, fmt.Errorf("save index run: %w", err)
		}
	}
	return report, nil
}

// LastRun returns the most recent build report.
func (s *IndexService) LastRun(ctx context.Context) (*domain.IndexReport, error) {
	if s.deps.Runs == nil {
		return nil, domain.ErrNotFound
	}
	return s.deps.Runs.LastRun(ctx)
}

func (s *IndexService) embedAll(ctx context.Context, chunks []domain.Chunk, report *domain.IndexReport) error {
	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = len(chunks)
	}

	var (
		mu       sync.Mutex
		upsertMu sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batch := chunks[start:end]
		g.Go(func() error {
			err := s.embedBatch(gctx, batch, &upsertMu)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Batch %d-%d failed: %v", start, end, err)
				for _, c := range batch {
					report.Failed = append(report.Failed, domain.FailedChunk{ChunkID: c.ChunkID, Error: err.Error()})
				}
				return nil
			}
			report.Indexed += len(batch)
			logger.Debug("Indexed batch %d-%d", start, end)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("index build cancelled: %w", err)
	}

	pos := make(map[string]int, len(chunks))
	for i, c := range chunks {
		pos[c.ChunkID] = i
	}
	sort.SliceStable(report.Failed, func(i, j int) bool {
		pi, iok := pos[report.Failed[i].ChunkID]
		pj, jok := pos[report.Failed[j].ChunkID]
		if !iok || !jok {
			return !iok && jok
		}
		return pi < pj
	})
	return nil
}

func (s *IndexService) embedBatch(ctx context.Context, batch []domain.Chunk, upsertMu *sync.Mutex) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	vectors, err := s.deps.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(batch))
	}

	records := make([]driven.VectorRecord, len(batch))
	for i, c := range batch {
		records[i] = driven.VectorRecord{
			ChunkID:   c.ChunkID,
			Embedding: vectors[i],
			Content:   c.Content,
			Metadata:  c.Metadata(),
		}
	}

	upsertMu.Lock()
	defer upsertMu.Unlock()
	if err := s.deps.Index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
