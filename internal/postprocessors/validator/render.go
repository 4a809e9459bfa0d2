package validator

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/regula/internal/core/domain"
)

const rule = "================================================================================"

// Render formats a report for terminal output.
func Render(r *domain.ValidationReport) string {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "  Chunk file validation report")
	fmt.Fprintln(&b, rule)

	fmt.Fprintln(&b, "\nOverview")
	fmt.Fprintf(&b, "  chunks:   %d\n", r.TotalChunks)
	fmt.Fprintf(&b, "  valid:    %d\n", r.ValidChunks)
	fmt.Fprintf(&b, "  errors:   %d\n", r.ErrorCount)
	fmt.Fprintf(&b, "  warnings: %d\n", r.WarningCount)

	if len(r.Errors) > 0 {
		fmt.Fprintln(&b, "\nErrors (fix before indexing)")
		for i, e := range r.Errors {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, e)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(&b, "\nWarnings")
		for i, w := range r.Warnings {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, w)
		}
	}

	if len(r.DuplicateChunkIDs) > 0 {
		fmt.Fprintln(&b, "\nDuplicate chunk ids")
		fmt.Fprintf(&b, "  %d: %s\n", len(r.DuplicateChunkIDs), strings.Join(r.DuplicateChunkIDs, ", "))
	}

	if len(r.EmptyContentChunks) > 0 {
		fmt.Fprintln(&b, "\nEmpty content")
		fmt.Fprintf(&b, "  %d: %s\n", len(r.EmptyContentChunks), strings.Join(r.EmptyContentChunks, ", "))
	}

	fc := r.FieldCheck
	fmt.Fprintln(&b, "\nField check")
	fmt.Fprintf(&b, "  missing chunk_id:              %d\n", fc.MissingChunkID)
	fmt.Fprintf(&b, "  missing content:               %d\n", fc.MissingContent)
	fmt.Fprintf(&b, "  missing article_id:            %d\n", fc.MissingArticleID)
	fmt.Fprintf(&b, "  missing type:                  %d\n", fc.MissingType)
	fmt.Fprintf(&b, "  missing chapter:               %d\n", fc.MissingChapter)
	fmt.Fprintf(&b, "  missing spec_name:             %d\n", fc.MissingSpecName)
	fmt.Fprintf(&b, "  missing spec_abbr:             %d\n", fc.MissingSpecAbbr)
	fmt.Fprintf(&b, "  table/note without related_to: %d\n", fc.TableNoteMissingRelatedTo)
	fmt.Fprintf(&b, "  article with related_to:       %d\n", fc.ArticleHasRelatedTo)

	if r.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Summary)
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}
