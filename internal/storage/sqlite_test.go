package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/flatgrep/pkg/types"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "flatgrep.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrations_Applied(t *testing.T) {
	s := newTestStorage(t)

	var version string
	err := s.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestMigrations_Idempotent(t *testing.T) {
	s := newTestStorage(t)

	err := ApplyMigrations(context.Background(), s.db)
	require.NoError(t, err)
}

func TestCacheEntry_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	entry := &CacheEntry{
		Fingerprint: "abc123",
		Query:       "ivanov",
		Records: []types.MatchRecord{
			{
				File:       "users.txt",
				FilePath:   "/data/users.txt",
				LineNumber: 42,
				RawLine:    "123456789;Ivanov;+79001234567",
				Fields: map[string]string{
					"identifier": "123456789",
					"last_name":  "Ivanov",
				},
			},
		},
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		ResultCount: 1500,
	}
	require.NoError(t, s.UpsertCacheEntry(ctx, entry))

	entries, err := s.ListCacheEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.Equal(t, entry.Query, got.Query)
	assert.Equal(t, entry.ResultCount, got.ResultCount)
	require.Len(t, got.Records, 1)
	assert.Equal(t, entry.Records[0].RawLine, got.Records[0].RawLine)
	assert.Equal(t, entry.Records[0].Fields, got.Records[0].Fields)
	assert.WithinDuration(t, entry.Timestamp, got.Timestamp, time.Second)
}

func TestCacheEntry_UpsertReplaces(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	entry := &CacheEntry{Fingerprint: "fp", Query: "first", ResultCount: 1, Timestamp: time.Now()}
	require.NoError(t, s.UpsertCacheEntry(ctx, entry))

	entry.Query = "second"
	entry.ResultCount = 2
	require.NoError(t, s.UpsertCacheEntry(ctx, entry))

	entries, err := s.ListCacheEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Query)
	assert.Equal(t, 2, entries[0].ResultCount)
}

func TestCacheEntry_Delete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCacheEntry(ctx, &CacheEntry{Fingerprint: "fp", Timestamp: time.Now()}))
	require.NoError(t, s.DeleteCacheEntry(ctx, "fp"))

	entries, err := s.ListCacheEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheCounters_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// No row yet reads as zero
	counters, err := s.GetCacheCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheCounters{}, counters)

	require.NoError(t, s.SaveCacheCounters(ctx, CacheCounters{Hits: 10, Misses: 3}))
	require.NoError(t, s.SaveCacheCounters(ctx, CacheCounters{Hits: 11, Misses: 3}))

	counters, err = s.GetCacheCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), counters.Hits)
	assert.Equal(t, int64(3), counters.Misses)
}

func TestClearCache_WipesEntriesAndCounters(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCacheEntry(ctx, &CacheEntry{Fingerprint: "fp", Timestamp: time.Now()}))
	require.NoError(t, s.SaveCacheCounters(ctx, CacheCounters{Hits: 5, Misses: 2}))
	require.NoError(t, s.ClearCache(ctx))

	entries, err := s.ListCacheEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	counters, err := s.GetCacheCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheCounters{}, counters)
}

func TestIndexedFile_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	file := &IndexedFile{
		Path:      "/data/users.txt",
		Name:      "users.txt",
		SizeBytes: 2048,
		ModTime:   time.Now().UTC().Truncate(time.Second),
		ChangeTag: "2048_1700000000",
		Lines:     120,
		IndexedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.UpsertIndexedFile(ctx, file))

	got, err := s.GetIndexedFile(ctx, file.Path)
	require.NoError(t, err)
	assert.Equal(t, file.Name, got.Name)
	assert.Equal(t, file.SizeBytes, got.SizeBytes)
	assert.Equal(t, file.ChangeTag, got.ChangeTag)
	assert.Equal(t, file.Lines, got.Lines)
}

func TestGetIndexedFile_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetIndexedFile(context.Background(), "/data/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIndexedFiles_SortedByPath(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, path := range []string{"/data/b.txt", "/data/a.txt"} {
		require.NoError(t, s.UpsertIndexedFile(ctx, &IndexedFile{
			Path: path, Name: filepath.Base(path),
			ModTime: time.Now(), IndexedAt: time.Now(),
		}))
	}

	files, err := s.ListIndexedFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/data/a.txt", files[0].Path)
	assert.Equal(t, "/data/b.txt", files[1].Path)
}

func TestClearIndex(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertIndexedFile(ctx, &IndexedFile{
		Path: "/data/a.txt", Name: "a.txt", ModTime: time.Now(), IndexedAt: time.Now(),
	}))
	require.NoError(t, s.ClearIndex(ctx))

	files, err := s.ListIndexedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSearchHistory_RecordAndList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordSearch(ctx, &SearchRecord{
			ID:            string(rune('a' + i)),
			Query:         "query",
			Mode:          "substring",
			Results:       i + 1,
			FilesSearched: 2,
			LinesSearched: 100,
			Duration:      time.Duration(i+1) * 50 * time.Millisecond,
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := s.ListRecentSearches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Most recent first
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, 150*time.Millisecond, records[0].Duration)
}

func TestSearchTotals(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	totals, err := s.GetSearchTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, SearchTotals{}, totals)

	require.NoError(t, s.RecordSearch(ctx, &SearchRecord{
		ID: "s1", Query: "q", Mode: "substring", Results: 10,
		Duration: 100 * time.Millisecond,
	}))
	require.NoError(t, s.RecordSearch(ctx, &SearchRecord{
		ID: "s2", Query: "q", Mode: "exact", Results: 5,
		Duration: 50 * time.Millisecond,
	}))

	totals, err = s.GetSearchTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalSearches)
	assert.Equal(t, int64(15), totals.TotalResults)
	assert.Equal(t, 150*time.Millisecond, totals.TotalDuration)
}
