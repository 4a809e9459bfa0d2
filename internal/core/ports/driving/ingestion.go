package driving

import (
	"context"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// IngestionService runs the offline pipeline that turns regulation text into chunks.
type IngestionService interface {
	// NormaliseFile reads a raw regulation text, normalises it and writes the result to out.
	NormaliseFile(ctx context.Context, in, out string) error

	// BuildChunks segments and chunks every configured regulation and persists the chunk list.
	BuildChunks(ctx context.Context) (*domain.ChunkRun, error)

	// Validate checks the persisted chunk file.
	Validate(ctx context.Context) *domain.ValidationReport

	// Clean strips abnormal characters from the persisted chunk file and writes the cleaned file.
	Clean(ctx context.Context) (*domain.CleanReport, error)
}

// IndexService embeds persisted chunks into the vector index.
type IndexService interface {
	// Build embeds and upserts all chunks. With force, validation errors do not block the build.
	Build(ctx context.Context, force bool) (*domain.IndexReport, error)

	// LastRun returns the most recent build report, or domain.ErrNotFound.
	LastRun(ctx context.Context) (*domain.IndexReport, error)
}

// AskService answers questions about the indexed regulations.
type AskService interface {
	// Ask retrieves candidates for the question and composes a cited answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Regulations returns the configured regulation corpus.
	Regulations() []domain.Regulation
}
