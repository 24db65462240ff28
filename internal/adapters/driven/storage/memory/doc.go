// Package memory provides an in-memory ReviewStore implementation.
// It mirrors the SQLite adapter's semantics (upsert, insert-or-ignore,
// append-only results) and is used by service tests and as a fallback
// when no database path is configured.
package memory
