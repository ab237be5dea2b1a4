// Package indexer discovers flat data files under the configured data
// root and maintains the file catalog: per-file size, modification time,
// line count, and a change tag used to skip unchanged files on re-index.
//
// Re-indexing is guarded twice: an in-process atomic lock rejects
// concurrent runs within one process, and an advisory file lock in the
// cache directory rejects concurrent runs across processes.
package indexer
