// Package segmenter splits normalised regulation text into typed records.
package segmenter

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// previewLength is the number of characters kept from a dropped paragraph.
const previewLength = 40

var (
	articlePattern = regexp.MustCompile(`^(\d+\.\d+\.\d+[A-Z]?)`)
	tablePattern   = regexp.MustCompile(`^===== 表格：表([\d.]+)`)
)

const notePrefix = "注："

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// Segmenter classifies blank-line separated paragraphs as articles,
// tables and notes.
type Segmenter struct {
	log *zap.Logger
}

// New creates a segmenter. A nil logger disables logging.
func New(log *zap.Logger) *Segmenter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Segmenter{log: log}
}

// state is the segmentation context: the table a note may attach to, if any.
type state struct {
	table   string
	inTable bool
	notes   int
}

// Segment implements driven.Segmenter.
//
// An article resets the context. A table opens a context in which notes
// attach to it, numbered in order; the context lasts until the next article
// or table. Notes
// outside a table context and unclassified paragraphs are dropped.
func (s *Segmenter) Segment(ctx context.Context, text string) (*domain.Segmentation, error) {
	result := &domain.Segmentation{}
	var st state

	for i, para := range Paragraphs(text) {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if m := articlePattern.FindStringSubmatch(para); m != nil {
			result.Records = append(result.Records, domain.Article{Number: m[1], Text: para})
			st = state{}
			continue
		}

		if m := tablePattern.FindStringSubmatch(para); m != nil {
			result.Records = append(result.Records, domain.Table{Number: m[1], Text: para})
			st = state{table: m[1], inTable: true}
			continue
		}

		if st.inTable && strings.HasPrefix(para, notePrefix) {
			st.notes++
			result.Records = append(result.Records, domain.Note{TableNumber: st.table, Text: para, Seq: st.notes})
			continue
		}

		d := domain.DroppedParagraph{Index: i, Preview: preview(para)}
		result.Dropped = append(result.Dropped, d)
		s.log.Debug("paragraph dropped", zap.Int("index", i), zap.String("preview", d.Preview))
	}

	if len(result.Dropped) > 0 {
		s.log.Info("unclassified paragraphs dropped",
			zap.Int("dropped", len(result.Dropped)),
			zap.Int("records", len(result.Records)))
	}
	return result, nil
}

// Paragraphs splits text on blank lines, trimming each paragraph and
// discarding empty ones.
func Paragraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}
