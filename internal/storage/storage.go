package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dkorolev/flatgrep/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
)

// Storage defines the interface for the engine's durable state.
type Storage interface {
	// Result cache operations
	UpsertCacheEntry(ctx context.Context, entry *CacheEntry) error
	ListCacheEntries(ctx context.Context) ([]*CacheEntry, error)
	DeleteCacheEntry(ctx context.Context, fingerprint string) error
	ClearCache(ctx context.Context) error
	SaveCacheCounters(ctx context.Context, counters CacheCounters) error
	GetCacheCounters(ctx context.Context) (CacheCounters, error)

	// File catalog operations
	UpsertIndexedFile(ctx context.Context, file *IndexedFile) error
	GetIndexedFile(ctx context.Context, path string) (*IndexedFile, error)
	ListIndexedFiles(ctx context.Context) ([]*IndexedFile, error)
	ClearIndex(ctx context.Context) error

	// Search history operations
	RecordSearch(ctx context.Context, record *SearchRecord) error
	ListRecentSearches(ctx context.Context, limit int) ([]*SearchRecord, error)
	GetSearchTotals(ctx context.Context) (SearchTotals, error)

	// Close releases the underlying database.
	Close() error
}

// CacheEntry is one persisted result-cache entry. Records is capped at the
// cache's stored-size limit, so ResultCount may exceed len(Records).
type CacheEntry struct {
	Fingerprint string
	Query       string
	Records     []types.MatchRecord
	Timestamp   time.Time
	ResultCount int
}

// CacheCounters are the cumulative hit/miss counters persisted alongside
// cache entries.
type CacheCounters struct {
	Hits   int64
	Misses int64
}

// IndexedFile is one catalog row describing a discovered data file.
// ChangeTag is a cheap size+mtime fingerprint used to skip unchanged files
// on re-index.
type IndexedFile struct {
	Path      string
	Name      string
	SizeBytes int64
	ModTime   time.Time
	ChangeTag string
	Lines     int64
	IndexedAt time.Time
}

// SearchRecord is one completed search invocation, kept for statistics.
type SearchRecord struct {
	ID            string
	Query         string
	Mode          string
	Results       int
	FilesSearched int
	LinesSearched int64
	Duration      time.Duration
	CreatedAt     time.Time
}

// SearchTotals are the lifetime aggregates over the search history.
type SearchTotals struct {
	TotalSearches int64
	TotalResults  int64
	TotalDuration time.Duration
}
