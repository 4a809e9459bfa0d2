// Package postprocessors turns normalised regulation text into chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.ChunkPipeline = (*Pipeline)(nil)

// Pipeline segments one regulation text and chunks its records.
type Pipeline struct {
	segmenter driven.Segmenter
	chunker   driven.Chunker
}

// NewPipeline creates a pipeline from a segmenter and a chunker.
func NewPipeline(segmenter driven.Segmenter, chunker driven.Chunker) *Pipeline {
	return &Pipeline{
		segmenter: segmenter,
		chunker:   chunker,
	}
}

// Process runs the text of regulation reg through segmentation and chunking.
func (p *Pipeline) Process(ctx context.Context, reg domain.Regulation, text string) (*domain.RegulationChunks, error) {
	if p.segmenter == nil || p.chunker == nil {
		return nil, fmt.Errorf("pipeline is not configured")
	}

	seg, err := p.segmenter.Segment(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", reg.Abbr, err)
	}

	chunks := p.chunker.Chunks(seg.Records, reg)

	return &domain.RegulationChunks{
		Summary: domain.RegulationSummary{
			Name:    reg.Name,
			Abbr:    reg.Abbr,
			Records: len(seg.Records),
			Chunks:  len(chunks),
			Dropped: len(seg.Dropped),
		},
		Chunks:  chunks,
		Dropped: seg.Dropped,
	}, nil
}

// MaxLength returns the chunk length bound of the configured chunker.
func (p *Pipeline) MaxLength() int {
	if p.chunker == nil {
		return 0
	}
	return p.chunker.MaxLength()
}
