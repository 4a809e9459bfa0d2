package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
	"github.com/custodia-labs/regula/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionDeps holds the ports the offline pipeline runs on.
type IngestionDeps struct {
	Normaliser driven.TextPipeline
	Source     driven.RegulationSource
	Pipeline   driven.ChunkPipeline
	Chunks     driven.ChunkStore
	Validator  driven.ChunkValidator
	Cleaner    driven.ChunkCleaner
}

// IngestionService turns regulation texts into the persisted chunk list.
type IngestionService struct {
	deps        IngestionDeps
	regulations []domain.Regulation
	cleanedPath string
}

// NewIngestionService creates an ingestion service for the configured regulations.
func NewIngestionService(deps IngestionDeps, settings *domain.Settings) *IngestionService {
	return &IngestionService{
		deps:        deps,
		regulations: settings.Regulations,
		cleanedPath: settings.Ingest.CleanedPath,
	}
}

// NormaliseFile normalises one raw regulation text.
func (s *IngestionService) NormaliseFile(ctx context.Context, in, out string) error {
	if s.deps.Normaliser == nil {
		return fmt.Errorf("%w: no normaliser configured", domain.ErrInvalidInput)
	}
	logger.Info("Normalising %s -> %s", in, out)
	if err := s.deps.Normaliser.NormaliseFile(ctx, in, out); err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	return nil
}

// BuildChunks processes every regulation in configured order and writes
// the combined chunk list. Regulations whose text file is missing are
// skipped; any other failure aborts the run without writing.
func (s *IngestionService) BuildChunks(ctx context.Context) (*domain.ChunkRun, error) {
	run := &domain.ChunkRun{
		Regulations: make([]domain.RegulationSummary, 0, len(s.regulations)),
		Chunks:      []domain.Chunk{},
		OutputPath:  s.deps.Chunks.Path(),
	}

	for _, reg := range s.regulations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := s.deps.Source.Read(ctx, reg)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Regulation %s skipped, text not found at %s", reg.Abbr, reg.Path)
			run.Regulations = append(run.Regulations, domain.RegulationSummary{
				Name:    reg.Name,
				Abbr:    reg.Abbr,
				Skipped: true,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read regulation %s: %w", reg.Abbr, err)
		}

		result, err := s.deps.Pipeline.Process(ctx, reg, text)
		if err != nil {
			return nil, fmt.Errorf("process regulation %s: %w", reg.Abbr, err)
		}
		for _, d := range result.Dropped {
			logger.Debug("%s: dropped paragraph %d: %s", reg.Abbr, d.Index, d.Preview)
		}
		logger.Info("%s: %d records, %d chunks", reg.Name, result.Summary.Records, result.Summary.Chunks)

		run.Regulations = append(run.Regulations, result.Summary)
		run.Chunks = append(run.Chunks, result.Chunks...)
	}

	if err := s.deps.Chunks.Save(ctx, run.Chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	logger.Info("Wrote %d chunks to %s", len(run.Chunks), run.OutputPath)
	return run, nil
}

// Validate checks the persisted chunk file.
func (s *IngestionService) Validate(_ context.Context) *domain.ValidationReport {
	return s.deps.Validator.ValidateFile(s.deps.Chunks.Path())
}

// Clean writes a cleaned copy of the persisted chunk file.
func (s *IngestionService) Clean(_ context.Context) (*domain.CleanReport, error) {
	report, err := s.deps.Cleaner.CleanFile(s.deps.Chunks.Path(), s.cleanedPath)
	if err != nil {
		return nil, fmt.Errorf("clean chunks: %w", err)
	}
	return report, nil
}
