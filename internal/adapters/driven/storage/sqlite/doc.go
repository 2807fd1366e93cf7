// Package sqlite provides the default SQLite-based implementation of the
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - DocumentStore: library documents and their derivation state
//   - PageStore: derived pages, replaced atomically per document
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.pagesmith/data/pagesmith.db
//
// # Thread Safety
//
// All operations are thread-safe. The store runs SQLite in WAL mode and opens
// write transactions immediately, so a page swap never interleaves with
// another writer.
package sqlite
