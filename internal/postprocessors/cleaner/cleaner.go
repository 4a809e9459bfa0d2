// Package cleaner removes characters outside the regulation character set
// from chunk content, keeping the original text alongside.
package cleaner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/postprocessors/validator"
)

// extraAllowed are accepted by the cleaner on top of the validator set.
const extraAllowed = "|—～_"

// Allowed reports whether the cleaner keeps r.
func Allowed(r rune) bool {
	return validator.Allowed(r) || strings.ContainsRune(extraAllowed, r)
}

var _ driven.ChunkCleaner = (*Cleaner)(nil)

// Cleaner strips abnormal characters from chunk files.
type Cleaner struct {
	log *zap.Logger
}

// New creates a cleaner. A nil logger disables logging.
func New(log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{log: log}
}

// Clean removes abnormal characters from every object in items. Entries
// that are not JSON objects are skipped with a warning.
func (c *Cleaner) Clean(items []any) ([]domain.CleanedChunk, *domain.CleanReport) {
	report := &domain.CleanReport{Abnormal: []string{}, Warnings: []string{}}
	seen := make(map[rune]bool)
	out := make([]domain.CleanedChunk, 0, len(items))

	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("chunk #%d is not an object, skipped", i+1))
			c.log.Warn("non-object chunk skipped", zap.Int("index", i))
			continue
		}

		id := fmt.Sprintf("chunk #%d", i+1)
		if v, ok := obj["chunk_id"]; ok && v != nil {
			id = fmt.Sprint(v)
		}
		content := stringValue(obj["content"])

		abnormal := validator.Abnormal(content, Allowed)
		cleaned := content
		if len(abnormal) > 0 {
			cleaned = strings.Map(func(r rune) rune {
				if Allowed(r) {
					return r
				}
				return -1
			}, content)
			report.Changed++
			c.log.Debug("abnormal characters removed",
				zap.String("chunk_id", id),
				zap.String("characters", string(abnormal)))
			for _, r := range abnormal {
				if !seen[r] {
					seen[r] = true
					report.Abnormal = append(report.Abnormal, string(r))
				}
			}
		}

		out = append(out, domain.CleanedChunk{ChunkID: id, Content: cleaned, OriginalContent: content})
	}

	report.Chunks = len(out)
	return out, report
}

// CleanFile cleans the chunk file at in and writes the result to out.
// A missing input produces an empty output list. A top-level object is
// treated as a one-element list.
func (c *Cleaner) CleanFile(in, out string) (*domain.CleanReport, error) {
	data, err := os.ReadFile(in)
	if errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("chunk file not found, writing empty list", zap.String("path", in))
		report := &domain.CleanReport{
			Abnormal:   []string{},
			Warnings:   []string{"chunk file not found: " + in},
			OutputPath: out,
		}
		return report, writeJSON(out, []domain.CleanedChunk{})
	}
	if err != nil {
		return nil, fmt.Errorf("read chunk file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse chunk file: %w", err)
	}

	items, ok := doc.([]any)
	var coerced bool
	if !ok {
		items = []any{doc}
		coerced = true
	}

	cleaned, report := c.Clean(items)
	if coerced {
		report.Warnings = append([]string{"chunk file is not a JSON array, treated as a one-element list"}, report.Warnings...)
		c.log.Warn("chunk file is not a JSON array, coerced to list", zap.String("path", in))
	}
	report.OutputPath = out

	if err := writeJSON(out, cleaned); err != nil {
		return nil, err
	}
	c.log.Info("chunks cleaned",
		zap.Int("chunks", report.Chunks),
		zap.Int("changed", report.Changed),
		zap.Strings("abnormal", report.Abnormal))
	return report, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode cleaned chunks: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write cleaned chunks: %w", err)
	}
	return nil
}
