package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/dkorolev/flatgrep/internal/config"
	"github.com/dkorolev/flatgrep/internal/storage"
	"github.com/dkorolev/flatgrep/pkg/types"
)

// ErrIndexBusy is returned when a re-index is already running, either in
// this process or in another one holding the advisory file lock.
var ErrIndexBusy = errors.New("index update already in progress")

// LockFileName is the advisory lock file kept in the cache directory.
const LockFileName = "index.lock"

// Statistics summarizes one re-index run.
type Statistics struct {
	FilesDiscovered int
	FilesIndexed    int
	FilesSkipped    int
	FilesFailed     int
	TotalLines      int64
	Duration        time.Duration
	ErrorMessages   []string
}

// Indexer maintains the file catalog for a data root.
type Indexer struct {
	store  storage.Storage
	cfg    *config.Config
	logger *slog.Logger
	lock   IndexLock
}

// New creates an indexer over the given storage and configuration.
func New(store storage.Storage, cfg *config.Config, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{store: store, cfg: cfg, logger: logger}
}

// Discover walks the data root and returns every regular file whose
// extension is on the allow-list. A missing root is created empty and
// logged rather than treated as an error, and unreadable entries are
// logged and skipped so one bad subtree never fails the whole discovery.
func (idx *Indexer) Discover(ctx context.Context) ([]types.DatabaseFile, error) {
	root := idx.cfg.DataDir

	if _, err := os.Stat(root); os.IsNotExist(err) {
		idx.logger.Warn("data directory does not exist, creating it", "path", root)
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return nil, nil
	}

	allowed := make(map[string]bool, len(idx.cfg.Extensions))
	for _, ext := range idx.cfg.Extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var files []types.DatabaseFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal: files already
			// discovered still get searched.
			idx.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Skip hidden directories
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			idx.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		files = append(files, types.DatabaseFile{
			Path:      path,
			Name:      d.Name(),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// A failed walk degrades to an empty file set; the caller searches
		// whatever was discovered before the failure.
		idx.logger.Warn("data directory walk failed", "root", root, "error", err)
		return files, nil
	}

	idx.logger.Debug("discovered data files", "root", root, "count", len(files))
	return files, nil
}

// Reindex refreshes the catalog: new and changed files get their lines
// counted and their rows upserted, unchanged files are skipped. Only one
// re-index may run at a time.
func (idx *Indexer) Reindex(ctx context.Context) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexBusy
	}
	defer idx.lock.Release()

	fileLock := flock.New(filepath.Join(idx.cfg.CacheDir, LockFileName))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	if !locked {
		return nil, ErrIndexBusy
	}
	defer func() { _ = fileLock.Unlock() }()

	startTime := time.Now()
	stats := &Statistics{}

	files, err := idx.Discover(ctx)
	if err != nil {
		return nil, err
	}
	stats.FilesDiscovered = len(files)

	var (
		indexed    int32
		skipped    int32
		failed     int32
		totalLines int64
		mu         sync.Mutex // protects stats.ErrorMessages
	)

	workers := idx.cfg.Workers(len(files))
	semaphore := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, file := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			lines, changed, err := idx.indexFile(gctx, file)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("%s: %v", file.Path, err))
				mu.Unlock()
				idx.logger.Warn("failed to index file", "path", file.Path, "error", err)
				return nil
			}
			if changed {
				atomic.AddInt32(&indexed, 1)
			} else {
				atomic.AddInt32(&skipped, 1)
			}
			atomic.AddInt64(&totalLines, lines)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.TotalLines = totalLines
	stats.Duration = time.Since(startTime)

	idx.logger.Info("index updated",
		"discovered", stats.FilesDiscovered,
		"indexed", stats.FilesIndexed,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"duration", stats.Duration)
	return stats, nil
}

// Catalog returns the stored catalog rows.
func (idx *Indexer) Catalog(ctx context.Context) ([]*storage.IndexedFile, error) {
	return idx.store.ListIndexedFiles(ctx)
}

// indexFile upserts one catalog row. It reports the file's line count and
// whether the row was (re)written.
func (idx *Indexer) indexFile(ctx context.Context, file types.DatabaseFile) (int64, bool, error) {
	tag := changeTag(file.SizeBytes, file.ModTime)

	existing, err := idx.store.GetIndexedFile(ctx, file.Path)
	if err == nil && existing.ChangeTag == tag {
		return existing.Lines, false, nil
	}
	if err != nil && err != storage.ErrNotFound {
		return 0, false, err
	}

	lines, err := countLines(file.Path)
	if err != nil {
		return 0, false, err
	}

	row := &storage.IndexedFile{
		Path:      file.Path,
		Name:      file.Name,
		SizeBytes: file.SizeBytes,
		ModTime:   file.ModTime,
		ChangeTag: tag,
		Lines:     lines,
		IndexedAt: time.Now(),
	}
	if err := idx.store.UpsertIndexedFile(ctx, row); err != nil {
		return 0, false, err
	}
	return lines, true, nil
}

// changeTag is a cheap size+mtime fingerprint. Hashing file contents is
// not worth the read for multi-gigabyte dumps.
func changeTag(sizeBytes int64, modTime time.Time) string {
	return fmt.Sprintf("%d_%d", sizeBytes, modTime.Unix())
}

// countLines counts newline-delimited lines, including a final line with
// no trailing newline. Works on raw bytes, so it is encoding-agnostic for
// ASCII-compatible encodings.
func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	var (
		count    int64
		lastByte byte = '\n'
		buf           = make([]byte, 256*1024)
	)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += int64(bytes.Count(buf[:n], []byte{'\n'}))
			lastByte = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if lastByte != '\n' {
		count++
	}
	return count, nil
}
