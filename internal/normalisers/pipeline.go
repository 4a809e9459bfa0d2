package normalisers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.TextPipeline = (*Pipeline)(nil)

// Pipeline applies text passes in order.
type Pipeline struct {
	passes []driven.TextNormaliser
}

// NewPipeline creates a pipeline of the given passes.
func NewPipeline(passes ...driven.TextNormaliser) *Pipeline {
	return &Pipeline{passes: passes}
}

// Names returns the pass names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}
	return names
}

// Normalise runs every pass over text.
func (p *Pipeline) Normalise(text string) string {
	for _, pass := range p.passes {
		before := len(text)
		text = pass.Normalise(text)
		logger.Debug("normalise: %s %d -> %d bytes", pass.Name(), before, len(text))
	}
	return text
}

// NormaliseFile reads in, normalises it and writes the result to out,
// creating the output directory when needed.
func (p *Pipeline) NormaliseFile(ctx context.Context, in, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	result := p.Normalise(strings.ToValidUTF8(string(data), ""))

	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(result), 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
