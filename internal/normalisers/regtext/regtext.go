package regtext

import "github.com/custodia-labs/regula/internal/core/ports/driven"

// Passes returns the regulation passes in application order.
func Passes(chapterTitles map[string]string) []driven.TextNormaliser {
	return []driven.TextNormaliser{
		Standardizer{},
		TableSpacer{},
		ChapterTitler{Titles: chapterTitles},
	}
}
