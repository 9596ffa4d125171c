// Package kvstore provides the key-value storage the image cache persists to.
//
// It stands in for browser local storage: each key holds one opaque blob that
// is read and rewritten as a whole. Backends are interchangeable through the
// Store interface:
//
//   - Memory keeps values in process memory (tests, ephemeral servers).
//   - File writes one file per key under a directory.
//   - SQLite stores values in a single table; use ":memory:" for tests.
//
// Limited wraps any backend with a per-value size quota so the cache's
// quota-exceeded fallback can be exercised the same way a browser triggers it.
package kvstore
