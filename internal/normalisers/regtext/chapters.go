package regtext

import (
	"strings"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

var _ driven.TextNormaliser = ChapterTitler{}

// ChapterTitler inserts chapter title lines.
type ChapterTitler struct {
	// Titles maps a chapter numeral to its title line.
	Titles map[string]string
}

// Name returns the pass name.
func (ChapterTitler) Name() string { return "chapter_titles" }

// Normalise implements driven.TextNormaliser.
func (c ChapterTitler) Normalise(text string) string { return AddChapterTitles(text, c.Titles) }

// AddChapterTitles inserts titles[n] before the first line numbered in
// chapter n. A line belongs to chapter n when the text before its first "."
// is the all-digit string n. Each title is inserted at most once, preceded
// by one blank line (none at the start of the text) and followed by one.
func AddChapterTitles(text string, titles map[string]string) string {
	var out []string
	titled := make(map[string]bool, len(titles))
	for _, line := range strings.Split(text, "\n") {
		if n, ok := chapterNumeral(strings.TrimSpace(line)); ok {
			if title, known := titles[n]; known && !titled[n] {
				titled[n] = true
				for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
					out = out[:len(out)-1]
				}
				if len(out) > 0 {
					out = append(out, "")
				}
				out = append(out, title, "")
			}
		}
		out = append(out, line)
	}

	result := excessNewlines.ReplaceAllString(strings.Join(out, "\n"), "\n\n")
	return strings.Trim(result, "\n")
}

func chapterNumeral(line string) (string, bool) {
	head, _, found := strings.Cut(line, ".")
	if !found || head == "" {
		return "", false
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return head, true
}
