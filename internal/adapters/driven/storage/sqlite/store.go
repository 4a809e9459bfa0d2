package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/regula/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// DefaultDataDir is used when no data directory is configured.
const DefaultDataDir = "vector_store"

// Ensure Store implements the interfaces.
var (
	_ driven.VectorIndex   = (*Store)(nil)
	_ driven.IndexRunStore = (*Store)(nil)
)

// Store is the SQLite vector index and index run log.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// NewStore opens or creates the database in dataDir and applies pending
// migrations. If dataDir is empty, DefaultDataDir is used.
func NewStore(dataDir string, log *zap.Logger) (*Store, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "regula.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := newStore(db, dbPath, log)
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Debug("vector store opened", zap.String("path", dbPath))
	return s, nil
}

func newStore(db *sql.DB, path string, log *zap.Logger) *Store {
	return &Store{db: db, path: path, log: log}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations and records their versions.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		s.log.Debug("migration applied", zap.String("name", name))
	}

	return nil
}

// ==================== Vector Index ====================

// Upsert inserts or replaces records in one transaction. All vectors must
// match the dimension of the vectors already stored.
func (s *Store) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return ctx.Err()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dim, err := storedDim(ctx, tx)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	for _, rec := range records {
		n := len(rec.Embedding)
		if n == 0 || (dim != 0 && n != dim) {
			return fmt.Errorf("upsert %s: %w: got %d, index has %d", rec.ChunkID, domain.ErrDimensionMismatch, n, dim)
		}
		if dim == 0 {
			dim = n
		}

		m := rec.Metadata
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (chunk_id, embedding, dim, content, article_id, spec_name, spec_abbr, chapter, type, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET
				embedding = excluded.embedding,
				dim = excluded.dim,
				content = excluded.content,
				article_id = excluded.article_id,
				spec_name = excluded.spec_name,
				spec_abbr = excluded.spec_abbr,
				chapter = excluded.chapter,
				type = excluded.type,
				updated_at = excluded.updated_at
		`, rec.ChunkID, vecmath.Encode(rec.Embedding), n, rec.Content,
			m.ArticleID, m.SpecName, m.SpecAbbr, m.Chapter, string(m.Type), now)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", rec.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// storedDim returns the dimension of stored vectors, or 0 when empty.
func storedDim(ctx context.Context, tx *sql.Tx) (int, error) {
	var dim int
	err := tx.QueryRowContext(ctx, "SELECT dim FROM chunks LIMIT 1").Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading index dimension: %w", err)
	}
	return dim, nil
}

// Query returns up to k records nearest to query by cosine distance.
func (s *Store) Query(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, embedding, content, article_id, spec_name, spec_abbr, chapter, type
		FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var (
		hits   []driven.VectorHit
		scored []vecmath.Scored
	)
	for rows.Next() {
		var (
			hit      driven.VectorHit
			blob     []byte
			typeName string
		)
		if err := rows.Scan(&hit.ChunkID, &blob, &hit.Content, &hit.Metadata.ArticleID,
			&hit.Metadata.SpecName, &hit.Metadata.SpecAbbr, &hit.Metadata.Chapter, &typeName); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		hit.Metadata.Type = domain.RecordType(typeName)

		vec, err := vecmath.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", hit.ChunkID, err)
		}
		if len(vec) != len(query) {
			return nil, fmt.Errorf("%w: query has %d, index has %d", domain.ErrDimensionMismatch, len(query), len(vec))
		}

		hit.Distance = vecmath.CosineDistance(query, vec)
		scored = append(scored, vecmath.Scored{Pos: len(hits), Distance: hit.Distance})
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	nearest := vecmath.Nearest(scored, k)
	result := make([]driven.VectorHit, len(nearest))
	for i, sc := range nearest {
		result[i] = hits[sc.Pos]
	}
	return result, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// ==================== Index Runs ====================

// SaveRun stores the report of a finished index build.
func (s *Store) SaveRun(ctx context.Context, report domain.IndexReport) error {
	failed := report.Failed
	if failed == nil {
		failed = []domain.FailedChunk{}
	}
	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("marshalling failed chunks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO index_runs (run_id, total, indexed, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.RunID, report.Total, report.Indexed, string(failedJSON),
		report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving index run: %w", err)
	}
	return nil
}

// LastRun returns the most recently finished index build.
func (s *Store) LastRun(ctx context.Context) (*domain.IndexReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, total, indexed, failed, started_at, finished_at
		FROM index_runs ORDER BY finished_at DESC LIMIT 1
	`)

	var (
		report            domain.IndexReport
		failedJSON        string
		started, finished int64
	)
	if err := row.Scan(&report.RunID, &report.Total, &report.Indexed, &failedJSON, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index run: %w", err)
	}

	if err := json.Unmarshal([]byte(failedJSON), &report.Failed); err != nil {
		return nil, fmt.Errorf("unmarshalling failed chunks: %w", err)
	}
	report.StartedAt = time.UnixMilli(started).UTC()
	report.FinishedAt = time.UnixMilli(finished).UTC()

	return &report, nil
}
