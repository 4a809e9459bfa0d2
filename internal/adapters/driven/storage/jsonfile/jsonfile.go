// Package jsonfile persists chunk lists and index failures as UTF-8 JSON
// files indented by four spaces.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure implementations satisfy the interfaces.
var (
	_ driven.ChunkStore     = (*ChunkStore)(nil)
	_ driven.FailedChunkLog = (*FailedChunkLog)(nil)
)

// Write encodes v to path, creating parent directories. HTML characters
// are not escaped so Chinese text and <> stay readable.
func Write(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ChunkStore keeps the chunk list in one JSON array file.
type ChunkStore struct {
	path string
}

// NewChunkStore creates a chunk store at path.
func NewChunkStore(path string) *ChunkStore {
	return &ChunkStore{path: path}
}

// Save writes the full chunk list, replacing the file.
func (s *ChunkStore) Save(ctx context.Context, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return Write(s.path, chunks)
}

// Load reads the chunk list. A missing file wraps domain.ErrNotFound.
func (s *ChunkStore) Load(ctx context.Context) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("chunk file %s: %w", s.path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read chunk file: %w", err)
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse chunk file %s: %w", s.path, err)
	}
	return chunks, nil
}

// Path returns the chunk file path.
func (s *ChunkStore) Path() string {
	return s.path
}

// FailedChunkLog writes index failures to a JSON file.
type FailedChunkLog struct {
	path string
}

// NewFailedChunkLog creates a failure log at path.
func NewFailedChunkLog(path string) *FailedChunkLog {
	return &FailedChunkLog{path: path}
}

type failedFile struct {
	RunID  string               `json:"run_id"`
	Failed []domain.FailedChunk `json:"failed"`
}

// Write replaces the log with the failures of one run.
func (l *FailedChunkLog) Write(ctx context.Context, runID string, failed []domain.FailedChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed == nil {
		failed = []domain.FailedChunk{}
	}
	return Write(l.path, failedFile{RunID: runID, Failed: failed})
}

// Path returns the log path.
func (l *FailedChunkLog) Path() string {
	return l.path
}
