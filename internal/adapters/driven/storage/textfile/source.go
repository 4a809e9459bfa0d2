// Package textfile reads normalised regulation texts from disk.
package textfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.RegulationSource = (*Source)(nil)

// Source reads each regulation from its configured path.
type Source struct{}

// NewSource creates a file source.
func NewSource() *Source {
	return &Source{}
}

// Read returns the regulation text with invalid UTF-8 sequences removed.
func (s *Source) Read(ctx context.Context, reg domain.Regulation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(reg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, reg.Path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", reg.Path, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
