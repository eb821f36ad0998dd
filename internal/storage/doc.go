// Package storage persists chunk vector records in SQLite and serves
// cosine-similarity search over them.
//
// # Schema
//
// One table, records, keyed by the chunk's string id
// ({document_id}#chunk{n}). Each row carries the chunk content, its
// metadata as JSON, and the embedding as a little-endian float32 blob.
// Schema changes go through versioned migrations ordered by semver.
//
// # Build Modes
//
// Two SQLite drivers are supported, selected at build time:
//
//   - purego (default): modernc.org/sqlite, no C compiler needed;
//     similarity is computed by a pure-Go scan
//   - sqlite_vec tag: mattn/go-sqlite3 with the sqlite-vec extension;
//     cosine distance is computed in SQL
//
// Both paths return identical results ordered by descending similarity.
package storage
