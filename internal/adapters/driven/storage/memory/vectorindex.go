package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force cosine index.
type VectorIndex struct {
	mu      sync.RWMutex
	records []driven.VectorRecord
	byID    map[string]int
	dim     int
	log     *zap.Logger
}

// NewVectorIndex creates an empty in-memory index.
func NewVectorIndex(log *zap.Logger) *VectorIndex {
	if log == nil {
		log = zap.NewNop()
	}
	return &VectorIndex{
		byID: make(map[string]int),
		log:  log,
	}
}

// Upsert inserts or replaces records. All vectors must share one dimension.
func (v *VectorIndex) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for _, rec := range records {
		if err := v.checkDim(len(rec.Embedding)); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.ChunkID, err)
		}
	}

	for _, rec := range records {
		rec.Embedding = append([]float32(nil), rec.Embedding...)
		if v.dim == 0 {
			v.dim = len(rec.Embedding)
		}
		if pos, ok := v.byID[rec.ChunkID]; ok {
			v.records[pos] = rec
			continue
		}
		v.byID[rec.ChunkID] = len(v.records)
		v.records = append(v.records, rec)
	}

	v.log.Debug("records upserted", zap.Int("count", len(records)), zap.Int("total", len(v.records)))
	return nil
}

// Query returns up to k records nearest to query.
func (v *VectorIndex) Query(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.records) == 0 {
		return []driven.VectorHit{}, nil
	}
	if err := v.checkDim(len(query)); err != nil {
		return nil, err
	}

	scored := make([]vecmath.Scored, len(v.records))
	for i, rec := range v.records {
		scored[i] = vecmath.Scored{Pos: i, Distance: vecmath.CosineDistance(query, rec.Embedding)}
	}

	nearest := vecmath.Nearest(scored, k)
	hits := make([]driven.VectorHit, len(nearest))
	for i, s := range nearest {
		rec := v.records[s.Pos]
		hits[i] = driven.VectorHit{
			ChunkID:  rec.ChunkID,
			Distance: s.Distance,
			Content:  rec.Content,
			Metadata: rec.Metadata,
		}
	}
	return hits, nil
}

// Count returns the number of stored records.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records), nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error { return nil }

// checkDim validates a vector length against the index dimension (caller holds lock).
func (v *VectorIndex) checkDim(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrDimensionMismatch)
	}
	if v.dim != 0 && n != v.dim {
		return fmt.Errorf("%w: got %d, index has %d", domain.ErrDimensionMismatch, n, v.dim)
	}
	return nil
}
