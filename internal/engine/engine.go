package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dkorolev/flatgrep/internal/cache"
	"github.com/dkorolev/flatgrep/internal/classify"
	"github.com/dkorolev/flatgrep/internal/config"
	"github.com/dkorolev/flatgrep/internal/indexer"
	"github.com/dkorolev/flatgrep/internal/scanner"
	"github.com/dkorolev/flatgrep/internal/storage"
	"github.com/dkorolev/flatgrep/pkg/types"
)

// Result is one completed search: the matches plus per-invocation
// statistics. ID identifies the invocation in the search history.
type Result struct {
	ID      string
	Query   types.Query
	Records []types.MatchRecord
	Stats   types.SearchStatistics
}

// Engine runs searches over the data root.
type Engine struct {
	cfg     *config.Config
	scanner *scanner.Scanner
	cache   *cache.Cache
	indexer *indexer.Indexer
	store   storage.Storage
	logger  *slog.Logger
}

// New wires an engine from its parts. store may be nil, which disables
// search-history recording.
func New(cfg *config.Config, store storage.Storage, resultCache *cache.Cache, idx *indexer.Indexer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if resultCache == nil {
		resultCache = cache.New(cache.Options{Enabled: false})
	}
	return &Engine{
		cfg: cfg,
		scanner: scanner.New(scanner.Options{
			PerFileCap:       cfg.MaxResultsPerFile,
			MmapThreshold:    cfg.MmapThresholdBytes,
			EncodingPriority: cfg.EncodingPriority,
			Logger:           logger,
		}),
		cache:   resultCache,
		indexer: idx,
		store:   store,
		logger:  logger,
	}
}

// Search runs the query over every discovered file. A blank query returns
// an empty result without touching any file. Per-file scan failures are
// logged and skipped. On context cancellation, whatever was collected so
// far is returned alongside the context error, and nothing is cached.
func (e *Engine) Search(ctx context.Context, query types.Query) (*Result, error) {
	result := &Result{
		ID:    uuid.New().String(),
		Query: query,
	}

	if query.IsEmpty() {
		return result, nil
	}

	startTime := time.Now()

	if detected := classify.DetectQuery(query.Text); detected.Kind != classify.KindUnknown {
		e.logger.Debug("query kind detected",
			"kind", string(detected.Kind), "normalized", detected.Normalized)
	}

	if hit, ok := e.cache.Get(ctx, query); ok {
		result.Records = hit.Records
		result.Stats = types.SearchStatistics{
			TotalResults: hit.ResultCount,
			SearchTime:   time.Since(startTime),
			CacheHit:     true,
		}
		e.logger.Info("cache hit", "query", query.Normalized(), "results", hit.ResultCount)
		return result, nil
	}

	files, err := e.indexer.Discover(ctx)
	if err != nil {
		return result, err
	}

	var linesScanned int64
	agg := newAggregator(e.cfg.MaxTotalResults)

	workers := e.cfg.Workers(len(files))
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

			if agg.Full() {
				return nil
			}

			res := e.scanner.Scan(file, query)
			atomic.AddInt64(&linesScanned, res.LinesScanned)
			if res.Err != nil {
				e.logger.Warn("file scan failed",
					"path", file.Path,
					"strategy", res.Strategy.String(),
					"error", res.Err)
			}
			agg.Add(res.Records)
			return nil
		})
	}

	waitErr := g.Wait()

	result.Records = agg.Results()
	result.Stats = types.SearchStatistics{
		TotalResults:  len(result.Records),
		FilesSearched: len(files),
		LinesSearched: atomic.LoadInt64(&linesScanned),
		SearchTime:    time.Since(startTime),
	}

	if waitErr != nil {
		// Partial results from a cancelled search are returned but never
		// cached or recorded.
		return result, waitErr
	}

	if len(result.Records) > 0 {
		e.cache.Put(ctx, query, result.Records, result.Stats.TotalResults)
	}
	e.recordSearch(ctx, result)

	e.logger.Info("search completed",
		"id", result.ID,
		"query", query.Normalized(),
		"results", result.Stats.TotalResults,
		"files", result.Stats.FilesSearched,
		"lines", result.Stats.LinesSearched,
		"duration", result.Stats.SearchTime)
	return result, nil
}

// SearchByField runs a substring search for value and keeps only records
// whose classified field matches it exactly. When no record classifies the
// value under the requested field, the unfiltered substring results are
// returned instead of an empty set.
func (e *Engine) SearchByField(ctx context.Context, field, value string) (*Result, error) {
	query := types.Query{Text: value, Mode: types.MatchSubstring}
	result, err := e.Search(ctx, query)
	if err != nil {
		return result, err
	}

	want := strings.ToLower(strings.TrimSpace(value))
	filtered := result.Records[:0:0]
	for _, record := range result.Records {
		if strings.ToLower(record.Fields[field]) == want {
			filtered = append(filtered, record)
		}
	}
	if len(filtered) == 0 {
		return result, nil
	}
	result.Records = filtered
	result.Stats.TotalResults = len(filtered)
	return result, nil
}
