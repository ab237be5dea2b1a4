package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance and applies
// pending migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Result cache operations

func (s *SQLiteStorage) UpsertCacheEntry(ctx context.Context, entry *CacheEntry) error {
	records, err := json.Marshal(entry.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal cache records: %w", err)
	}

	query := `
		INSERT INTO cache_entries (fingerprint, query, records, result_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			query = excluded.query,
			records = excluded.records,
			result_count = excluded.result_count,
			created_at = excluded.created_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		entry.Fingerprint, entry.Query, string(records),
		entry.ResultCount, entry.Timestamp); err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListCacheEntries(ctx context.Context) ([]*CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT fingerprint, query, records, result_count, created_at FROM cache_entries")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*CacheEntry
	for rows.Next() {
		var entry CacheEntry
		var records string
		if err := rows.Scan(&entry.Fingerprint, &entry.Query, &records,
			&entry.ResultCount, &entry.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(records), &entry.Records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cache records for %s: %w",
				entry.Fingerprint, err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStorage) DeleteCacheEntry(ctx context.Context, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ClearCache(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("failed to clear cache entries: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_counters"); err != nil {
		return fmt.Errorf("failed to clear cache counters: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) SaveCacheCounters(ctx context.Context, counters CacheCounters) error {
	query := `
		INSERT INTO cache_counters (id, hits, misses) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET hits = excluded.hits, misses = excluded.misses
	`
	if _, err := s.db.ExecContext(ctx, query, counters.Hits, counters.Misses); err != nil {
		return fmt.Errorf("failed to save cache counters: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetCacheCounters(ctx context.Context) (CacheCounters, error) {
	var counters CacheCounters
	err := s.db.QueryRowContext(ctx,
		"SELECT hits, misses FROM cache_counters WHERE id = 1").
		Scan(&counters.Hits, &counters.Misses)
	if err == sql.ErrNoRows {
		return CacheCounters{}, nil
	}
	if err != nil {
		return CacheCounters{}, fmt.Errorf("failed to read cache counters: %w", err)
	}
	return counters, nil
}

// File catalog operations

func (s *SQLiteStorage) UpsertIndexedFile(ctx context.Context, file *IndexedFile) error {
	query := `
		INSERT INTO indexed_files (path, name, size_bytes, mod_time, change_tag, lines, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			size_bytes = excluded.size_bytes,
			mod_time = excluded.mod_time,
			change_tag = excluded.change_tag,
			lines = excluded.lines,
			indexed_at = excluded.indexed_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		file.Path, file.Name, file.SizeBytes, file.ModTime,
		file.ChangeTag, file.Lines, file.IndexedAt); err != nil {
		return fmt.Errorf("failed to upsert indexed file: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetIndexedFile(ctx context.Context, path string) (*IndexedFile, error) {
	var file IndexedFile
	err := s.db.QueryRowContext(ctx, `
		SELECT path, name, size_bytes, mod_time, change_tag, lines, indexed_at
		FROM indexed_files WHERE path = ?`, path).
		Scan(&file.Path, &file.Name, &file.SizeBytes, &file.ModTime,
			&file.ChangeTag, &file.Lines, &file.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indexed file: %w", err)
	}
	return &file, nil
}

func (s *SQLiteStorage) ListIndexedFiles(ctx context.Context) ([]*IndexedFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, name, size_bytes, mod_time, change_tag, lines, indexed_at
		FROM indexed_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []*IndexedFile
	for rows.Next() {
		var file IndexedFile
		if err := rows.Scan(&file.Path, &file.Name, &file.SizeBytes, &file.ModTime,
			&file.ChangeTag, &file.Lines, &file.IndexedAt); err != nil {
			return nil, err
		}
		files = append(files, &file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ClearIndex(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM indexed_files"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	return nil
}

// Search history operations

func (s *SQLiteStorage) RecordSearch(ctx context.Context, record *SearchRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO search_history (id, query, mode, results, files_searched, lines_searched, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		record.ID, record.Query, record.Mode, record.Results,
		record.FilesSearched, record.LinesSearched,
		record.Duration.Milliseconds(), record.CreatedAt); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListRecentSearches(ctx context.Context, limit int) ([]*SearchRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, mode, results, files_searched, lines_searched, duration_ms, created_at
		FROM search_history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*SearchRecord
	for rows.Next() {
		var record SearchRecord
		var durationMs int64
		if err := rows.Scan(&record.ID, &record.Query, &record.Mode, &record.Results,
			&record.FilesSearched, &record.LinesSearched, &durationMs,
			&record.CreatedAt); err != nil {
			return nil, err
		}
		record.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) GetSearchTotals(ctx context.Context) (SearchTotals, error) {
	var totals SearchTotals
	var durationMs sql.NullInt64
	var results sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(results), 0), COALESCE(SUM(duration_ms), 0)
		FROM search_history`).
		Scan(&totals.TotalSearches, &results, &durationMs)
	if err != nil {
		return SearchTotals{}, fmt.Errorf("failed to read search totals: %w", err)
	}
	totals.TotalResults = results.Int64
	totals.TotalDuration = time.Duration(durationMs.Int64) * time.Millisecond
	return totals, nil
}

// compile-time interface check
var _ Storage = (*SQLiteStorage)(nil)
