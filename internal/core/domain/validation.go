package domain

import "fmt"

// FieldCheck counts per-field structural problems.
type FieldCheck struct {
	MissingChunkID            int `json:"missing_chunk_id"`
	MissingContent            int `json:"missing_content"`
	MissingArticleID          int `json:"missing_article_id"`
	MissingType               int `json:"missing_type"`
	MissingChapter            int `json:"missing_chapter"`
	MissingSpecName           int `json:"missing_spec_name"`
	MissingSpecAbbr           int `json:"missing_spec_abbr"`
	TableNoteMissingRelatedTo int `json:"table_note_missing_related_to"`
	ArticleHasRelatedTo       int `json:"article_has_related_to"`
}

// ValidationReport is the diagnostic output of the chunk validator.
// It is derived data and never persisted as a source of truth.
type ValidationReport struct {
	TotalChunks        int        `json:"total_chunks"`
	ValidChunks        int        `json:"valid_chunks"`
	ErrorCount         int        `json:"error_count"`
	WarningCount       int        `json:"warning_count"`
	Errors             []string   `json:"errors"`
	Warnings           []string   `json:"warnings"`
	DuplicateChunkIDs  []string   `json:"duplicate_chunk_ids"`
	EmptyContentChunks []string   `json:"empty_content_chunks"`
	FieldCheck         FieldCheck `json:"field_check"`
	Summary            string     `json:"summary,omitempty"`
}

// NewValidationReport returns an empty report with non-nil slices.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		Errors:             []string{},
		Warnings:           []string{},
		DuplicateChunkIDs:  []string{},
		EmptyContentChunks: []string{},
	}
}

// AddError records a must-fix problem.
func (r *ValidationReport) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.ErrorCount++
}

// AddWarning records an advisory problem.
func (r *ValidationReport) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	r.WarningCount++
}

// OK returns true when no error-class check fired.
func (r *ValidationReport) OK() bool {
	return r.ErrorCount == 0
}
