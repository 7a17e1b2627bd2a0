// Package sqlite provides the SQLite-backed record store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Each record is a row in
// the records table holding its JSON metadata document and specs, plus one
// row per table column in record_columns holding the values as a packed
// little-endian float64 blob. Non-finite values survive the round trip.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.lightway/data/records.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
