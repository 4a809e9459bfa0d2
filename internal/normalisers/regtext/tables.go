package regtext

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

var _ driven.TextNormaliser = TableSpacer{}

// TableSpacer surrounds each table block with exactly one blank line.
type TableSpacer struct{}

// Name returns the pass name.
func (TableSpacer) Name() string { return "table_spacing" }

// Normalise implements driven.TextNormaliser.
func (TableSpacer) Normalise(text string) string { return NormalizeTableSpacing(text) }

// NormalizeTableSpacing normalises line endings, isolates every table block
// with one blank line on each side, collapses three or more newlines to two
// and returns the trimmed text with a single trailing newline.
//
// A table block runs from its sentinel line (ending in "=====") to the last
// line before a blank line that is followed by non-space text, or to the end
// of the text when it ends with a newline. Blocks that end neither way are
// left as they are.
func NormalizeTableSpacing(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	cursor := 0
	for {
		rel := strings.Index(text[cursor:], TableSentinel)
		if rel < 0 {
			break
		}
		sentinel := cursor + rel
		end, ok := tableEnd(text, sentinel)
		if !ok {
			b.WriteString(text[cursor : sentinel+len(TableSentinel)])
			cursor = sentinel + len(TableSentinel)
			continue
		}
		start := sentinel
		for start > cursor && text[start-1] == '\n' {
			start--
		}
		b.WriteString(text[cursor:start])
		b.WriteString("\n\n")
		b.WriteString(strings.Trim(text[start:end], "\n"))
		b.WriteString("\n\n")
		cursor = end
	}
	b.WriteString(text[cursor:])

	out := excessNewlines.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out) + "\n"
}

// tableEnd returns the exclusive end of the table block whose sentinel
// starts at i.
func tableEnd(text string, i int) (int, bool) {
	rest := i + len(TableSentinel)
	title := strings.Index(text[rest:], "=====\n")
	if title < 0 {
		return 0, false
	}
	pos := rest + title + len("=====\n")
	for {
		if blankBeforeText(text, pos) || pos == len(text) {
			return pos, true
		}
		nl := strings.IndexByte(text[pos:], '\n')
		if nl < 0 {
			return 0, false
		}
		pos += nl + 1
	}
}

// blankBeforeText reports whether text at pos is a newline followed by a
// non-space character.
func blankBeforeText(text string, pos int) bool {
	if pos >= len(text) || text[pos] != '\n' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[pos+1:])
	return r != utf8.RuneError && !unicode.IsSpace(r)
}
