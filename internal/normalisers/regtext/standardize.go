package regtext

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// TableSentinel opens a table block.
const TableSentinel = "===== 表格："

// NotePrefix opens a table note.
const NotePrefix = "注："

var unitNumber = regexp.MustCompile(`^\d+\.\d+(\.\d+[A-Z]?)?`)

var _ driven.TextNormaliser = Standardizer{}

// Standardizer reflows non-table text into one line per unit.
type Standardizer struct{}

// Name returns the pass name.
func (Standardizer) Name() string { return "standardize" }

// Normalise implements driven.TextNormaliser.
func (Standardizer) Normalise(text string) string { return Standardize(text) }

type block struct {
	table bool
	lines []string
}

// Standardize splits text into table and non-table blocks, reflows the
// non-table blocks and joins every resulting unit with a blank line.
func Standardize(text string) string {
	var out []string
	for _, b := range splitBlocks(text) {
		if b.table {
			out = append(out, strings.TrimSpace(strings.Join(b.lines, "\n")))
			continue
		}
		out = append(out, reflow(b.lines)...)
	}
	return strings.Join(out, "\n\n")
}

// IsUnitStart reports whether a trimmed line opens a new unit.
func IsUnitStart(line string) bool {
	return unitNumber.MatchString(line) || strings.HasPrefix(line, NotePrefix)
}

func splitBlocks(text string) []block {
	var (
		blocks  []block
		current []string
		inTable bool
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, block{table: inTable, lines: current})
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		isSentinel := strings.HasPrefix(trimmed, TableSentinel)

		switch {
		case isSentinel:
			flush()
			inTable = true
		case inTable && IsUnitStart(trimmed):
			flush()
			inTable = false
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

// reflow merges continuation lines into their unit. Lines preceding the
// first unit of the block are discarded.
func reflow(lines []string) []string {
	var units []string
	started := false
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "　", " "))
		if line == "" {
			continue
		}
		if IsUnitStart(line) {
			units = append(units, line)
			started = true
			continue
		}
		if started {
			units[len(units)-1] += " " + line
		}
	}
	for i, u := range units {
		units[i] = collapseSpace(u)
	}
	return units
}

// collapseSpace replaces every whitespace run with one space and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
