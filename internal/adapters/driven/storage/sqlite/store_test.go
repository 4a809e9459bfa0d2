package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testRecord(id string, vec ...float32) driven.VectorRecord {
	return driven.VectorRecord{
		ChunkID:   id,
		Embedding: vec,
		Content:   "条文 " + id,
		Metadata: domain.ChunkMetadata{
			ArticleID: id,
			SpecName:  "宿舍、旅馆建筑项目规范",
			SpecAbbr:  "sslg",
			Chapter:   "5",
			Type:      domain.RecordArticle,
		},
	}
}

// ==================== Store Creation ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")

	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "regula.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, nil)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	// Reopening does not re-apply migrations
	store, err = NewStore(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	_, err := NewStore("/dev/null/store", nil)
	assert.Error(t, err)
}

// ==================== Vector Index ====================

func TestStore_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		testRecord("5.1.1", 1, 0, 0),
		testRecord("5.1.2", 0, 1, 0),
		testRecord("5.1.3", 0.9, 0.1, 0),
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := store.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "5.1.1", hits[0].ChunkID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
	assert.Equal(t, "5.1.3", hits[1].ChunkID)
	assert.Equal(t, "条文 5.1.1", hits[0].Content)
	assert.Equal(t, domain.ChunkMetadata{
		ArticleID: "5.1.1",
		SpecName:  "宿舍、旅馆建筑项目规范",
		SpecAbbr:  "sslg",
		Chapter:   "5",
		Type:      domain.RecordArticle,
	}, hits[0].Metadata)
}

func TestStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{testRecord("a", 1, 0)}))
	updated := testRecord("a", 0, 1)
	updated.Content = "updated"
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{updated}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := store.Query(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "updated", hits[0].Content)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
}

func TestStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{testRecord("a", 1, 0)}))

	err := store.Upsert(ctx, []driven.VectorRecord{testRecord("b", 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = store.Query(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// The failed transaction left nothing behind
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_QueryEmpty(t *testing.T) {
	store := setupTestStore(t)

	hits, err := store.Query(context.Background(), []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = store.Query(context.Background(), []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// ==================== Index Runs ====================

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.LastRun(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, domain.IndexReport{
		RunID: "first", Total: 2, Indexed: 2,
		StartedAt: start, FinishedAt: start.Add(time.Second),
	}))
	require.NoError(t, store.SaveRun(ctx, domain.IndexReport{
		RunID: "second", Total: 3, Indexed: 2,
		Failed:    []domain.FailedChunk{{ChunkID: "x", Error: "boom"}},
		StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour + 2*time.Second),
	}))

	last, err := store.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", last.RunID)
	assert.Equal(t, []domain.FailedChunk{{ChunkID: "x", Error: "boom"}}, last.Failed)
	assert.Equal(t, 2*time.Second, last.Duration())
}

// ==================== Failure Paths ====================

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(db, "mock", zap.NewNop()), mock
}

func TestStore_Upsert_ExecError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT dim FROM chunks").WillReturnRows(sqlmock.NewRows([]string{"dim"}).AddRow(2))
	mock.ExpectExec("INSERT INTO chunks").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Upsert(context.Background(), []driven.VectorRecord{testRecord("a", 1, 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Upsert_BeginError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("locked"))

	err := store.Upsert(context.Background(), []driven.VectorRecord{testRecord("a", 1, 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin upsert")
}

func TestStore_Upsert_CommitError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT dim FROM chunks").WillReturnRows(sqlmock.NewRows([]string{"dim"}))
	mock.ExpectExec("INSERT INTO chunks").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("io error"))

	err := store.Upsert(context.Background(), []driven.VectorRecord{testRecord("a", 1, 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit upsert")
}

func TestStore_Query_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT chunk_id, embedding").WillReturnError(errors.New("no such table"))

	_, err := store.Query(context.Background(), []float32{1}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying chunks")
}

func TestStore_Query_CorruptBlob(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"chunk_id", "embedding", "content", "article_id", "spec_name", "spec_abbr", "chapter", "type"}).
		AddRow("a", []byte{1, 2, 3}, "c", "1.0.1", "n", "x", "1", "article")
	mock.ExpectQuery("SELECT chunk_id, embedding").WillReturnRows(rows)

	_, err := store.Query(context.Background(), []float32{1}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk a")
}

func TestStore_Count_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("closed"))

	_, err := store.Count(context.Background())
	assert.Error(t, err)
}
