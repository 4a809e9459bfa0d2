// Package validator checks a chunk list for structural problems before it
// is embedded.
//
// Validation never mutates its input. Every check contributes either an
// error (must be fixed before indexing) or a warning (advisory).
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.ChunkValidator = (*Validator)(nil)

// Validator validates chunk files against a maximum content length.
type Validator struct {
	maxLength int
}

// New creates a validator that warns on content longer than maxLength characters.
func New(maxLength int) *Validator {
	return &Validator{maxLength: maxLength}
}

// ValidateFile implements driven.ChunkValidator. A missing file, malformed
// JSON, a non-array document and an empty array are each reported as a
// single top-level error.
func (v *Validator) ValidateFile(path string) *domain.ValidationReport {
	report := domain.NewValidationReport()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report.AddError("chunk file not found: %s", path)
		} else {
			report.AddError("read chunk file: %v", err)
		}
		return report
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		report.AddError("parse chunk file: %v", err)
		return report
	}

	items, ok := doc.([]any)
	if !ok {
		report.AddError("chunk file is not a JSON array (got %s)", jsonKind(doc))
		return report
	}

	return v.Validate(items)
}

// ValidateChunks validates typed chunks through their JSON form.
func (v *Validator) ValidateChunks(chunks []domain.Chunk) (*domain.ValidationReport, error) {
	data, err := json.Marshal(chunks)
	if err != nil {
		return nil, fmt.Errorf("encode chunks: %w", err)
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return v.Validate(items), nil
}

var requiredFields = []string{"article_id", "type", "chapter", "spec_name", "spec_abbr"}

// Validate checks decoded chunk objects.
func (v *Validator) Validate(items []any) *domain.ValidationReport {
	report := domain.NewValidationReport()
	report.TotalChunks = len(items)
	if len(items) == 0 {
		report.AddError("chunk file contains no chunks")
		return report
	}

	v.checkDuplicates(items, report)

	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			report.AddError("chunk #%d: not a JSON object (got %s)", i+1, jsonKind(item))
			continue
		}
		if v.checkChunk(i, obj, report) {
			report.ValidChunks++
		}
	}

	report.Summary = fmt.Sprintf("validation finished | chunks: %d | valid: %d | errors: %d | warnings: %d",
		report.TotalChunks, report.ValidChunks, report.ErrorCount, report.WarningCount)
	return report
}

// checkDuplicates lists each repeated non-empty chunk_id once, in first-seen
// order, and adds one error per repeated id.
func (v *Validator) checkDuplicates(items []any, report *domain.ValidationReport) {
	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := obj["chunk_id"].(string)
		if id == "" {
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	for _, id := range order {
		if counts[id] > 1 {
			report.DuplicateChunkIDs = append(report.DuplicateChunkIDs, id)
		}
	}
	if n := len(report.DuplicateChunkIDs); n > 0 {
		report.Errors = append(report.Errors, "duplicate chunk_id: "+strings.Join(report.DuplicateChunkIDs, ", "))
		report.ErrorCount += n
	}
}

func (v *Validator) checkChunk(i int, obj map[string]any, report *domain.ValidationReport) bool {
	label := chunkLabel(i, obj)
	valid := true
	fc := &report.FieldCheck

	if s, ok := obj["chunk_id"].(string); !ok || s == "" {
		fc.MissingChunkID++
		report.AddError("%s: chunk_id missing or not a string", label)
		valid = false
	}

	content, _ := obj["content"].(string)
	content = strings.TrimSpace(content)
	if content == "" {
		fc.MissingContent++
		report.EmptyContentChunks = append(report.EmptyContentChunks, label)
		report.AddError("%s: content is empty or whitespace only", label)
		valid = false
	} else {
		if n := utf8.RuneCountInString(content); v.maxLength > 0 && n > v.maxLength {
			report.AddWarning("%s: content length %d exceeds %d", label, n, v.maxLength)
		}
		if abnormal := Abnormal(content, Allowed); len(abnormal) > AbnormalThreshold {
			report.AddWarning("%s: content contains %d distinct abnormal characters (%s)",
				label, len(abnormal), string(abnormal))
		}
	}

	for _, field := range requiredFields {
		if s, ok := obj[field].(string); !ok || s == "" {
			incrementMissing(fc, field)
			report.AddError("%s: %s missing or not a string", label, field)
			valid = false
		}
	}

	chunkType, _ := obj["type"].(string)
	_, hasRelated := obj["related_to"]
	rt := domain.RecordType(chunkType)

	if rt.RequiresRelatedTo() && !hasRelated {
		fc.TableNoteMissingRelatedTo++
		report.AddError("%s: type %s requires related_to", label, chunkType)
		valid = false
	}
	if rt == domain.RecordArticle && hasRelated {
		fc.ArticleHasRelatedTo++
		report.AddWarning("%s: article carries related_to; it should be removed", label)
	}

	return valid
}

func incrementMissing(fc *domain.FieldCheck, field string) {
	switch field {
	case "article_id":
		fc.MissingArticleID++
	case "type":
		fc.MissingType++
	case "chapter":
		fc.MissingChapter++
	case "spec_name":
		fc.MissingSpecName++
	case "spec_abbr":
		fc.MissingSpecAbbr++
	}
}

// chunkLabel names a chunk in messages: its chunk_id when present, its
// 1-based position otherwise.
func chunkLabel(i int, obj map[string]any) string {
	if id, ok := obj["chunk_id"]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return fmt.Sprintf("chunk #%d", i+1)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
