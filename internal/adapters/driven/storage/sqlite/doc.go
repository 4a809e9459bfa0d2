// Package sqlite provides the SQLite-backed vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database file holds:
//
//   - chunks: one row per chunk with its embedding as a little-endian
//     float32 blob and the retrieval metadata
//   - index_runs: one row per index build
//
// Queries are brute-force cosine over all stored vectors.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <data_dir>/regula.db; data_dir defaults to
// ./vector_store.
//
// # Thread Safety
//
// All operations are thread-safe. The store runs SQLite in WAL mode.
package sqlite
