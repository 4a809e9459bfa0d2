package driven

import (
	"context"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// VectorIndex stores chunk vectors and answers nearest-neighbour queries
// under cosine distance. One index is opened per process and shared.
type VectorIndex interface {
	// Upsert inserts or replaces the given records.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Query returns up to k nearest records ordered by ascending distance.
	Query(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorRecord is one chunk as stored in the index.
type VectorRecord struct {
	ChunkID   string
	Embedding []float32
	Content   string
	Metadata  domain.ChunkMetadata
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the cosine distance (0 = identical, 2 = opposite).
	Distance float64

	// Content is the stored chunk text.
	Content string

	// Metadata is the stored chunk metadata.
	Metadata domain.ChunkMetadata
}

// IndexRunStore records index build runs.
type IndexRunStore interface {
	// SaveRun stores the report of a finished run.
	SaveRun(ctx context.Context, report domain.IndexReport) error

	// LastRun returns the most recent run, or domain.ErrNotFound.
	LastRun(ctx context.Context) (*domain.IndexReport, error)
}
