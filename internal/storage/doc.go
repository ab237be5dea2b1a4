// Package storage provides SQLite-based persistence for the pieces of the
// engine that outlive a single search: the result cache, the file catalog
// built by the indexer, and the cumulative search history.
//
// The persisted cache format is an implementation detail, not a
// compatibility contract: entries are keyed by query fingerprint and carry
// the original query, the stored (capped) records as JSON, a timestamp and
// the true result count.
//
// # Build Tags
//
// Two SQLite drivers are supported, selected at build time:
//
// CGO build (sqlite_cgo tag), using github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...
//
// Pure Go build (default), using modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build ./...
package storage
