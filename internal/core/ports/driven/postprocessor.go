package driven

import (
	"context"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// Segmenter splits normalised regulation text into typed records.
type Segmenter interface {
	// Segment returns the records in document order and the paragraphs it dropped.
	Segment(ctx context.Context, text string) (*domain.Segmentation, error)
}

// Chunker splits records into bounded-length chunks.
type Chunker interface {
	// Chunks returns the chunks for all records of one regulation.
	Chunks(records []domain.Record, regulation domain.Regulation) []domain.Chunk

	// MaxLength returns the chunk length bound in characters.
	MaxLength() int
}

// ChunkStore persists the chunk list.
type ChunkStore interface {
	// Save writes the full chunk list, replacing any previous content.
	Save(ctx context.Context, chunks []domain.Chunk) error

	// Load reads the chunk list.
	Load(ctx context.Context) ([]domain.Chunk, error)

	// Path returns the storage location.
	Path() string
}

// ChunkValidator checks a persisted chunk file before it is indexed.
type ChunkValidator interface {
	// ValidateFile returns a report; unreadable or malformed files are reported, not returned as errors.
	ValidateFile(path string) *domain.ValidationReport
}

// FailedChunkLog records the chunks an index build could not store.
type FailedChunkLog interface {
	// Write replaces the log with the failures of the given run.
	Write(ctx context.Context, runID string, failed []domain.FailedChunk) error

	// Path returns the log location.
	Path() string
}

// ChunkPipeline segments and chunks the text of one regulation.
type ChunkPipeline interface {
	// Process returns the chunks and a summary for one regulation.
	Process(ctx context.Context, regulation domain.Regulation, text string) (*domain.RegulationChunks, error)

	// MaxLength returns the chunk length bound in characters.
	MaxLength() int
}

// ChunkCleaner strips abnormal characters from a persisted chunk file.
type ChunkCleaner interface {
	// CleanFile cleans in and writes the cleaned list to out.
	CleanFile(in, out string) (*domain.CleanReport, error)
}

// RegulationSource reads the normalised text of a regulation.
type RegulationSource interface {
	// Read returns the text at the regulation's path, or an error
	// wrapping domain.ErrNotFound when the file does not exist.
	Read(ctx context.Context, regulation domain.Regulation) (string, error)
}
