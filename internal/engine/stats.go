package engine

import (
	"context"

	"github.com/dkorolev/flatgrep/internal/cache"
	"github.com/dkorolev/flatgrep/internal/indexer"
	"github.com/dkorolev/flatgrep/internal/storage"
)

// Summary aggregates lifetime search history with the current cache
// state.
type Summary struct {
	Totals storage.SearchTotals
	Recent []*storage.SearchRecord
	Cache  cache.Stats
}

// recordSearch appends the invocation to the search history. History is
// best effort; failures are logged, never surfaced.
func (e *Engine) recordSearch(ctx context.Context, result *Result) {
	if e.store == nil {
		return
	}
	err := e.store.RecordSearch(ctx, &storage.SearchRecord{
		ID:            result.ID,
		Query:         result.Query.Normalized(),
		Mode:          string(result.Query.Mode),
		Results:       result.Stats.TotalResults,
		FilesSearched: result.Stats.FilesSearched,
		LinesSearched: result.Stats.LinesSearched,
		Duration:      result.Stats.SearchTime,
	})
	if err != nil {
		e.logger.Warn("failed to record search", "id", result.ID, "error", err)
	}
}

// Statistics returns lifetime totals, the most recent invocations, and
// cache counters.
func (e *Engine) Statistics(ctx context.Context, recentLimit int) (*Summary, error) {
	summary := &Summary{Cache: e.cache.Stats()}
	if e.store == nil {
		return summary, nil
	}

	totals, err := e.store.GetSearchTotals(ctx)
	if err != nil {
		return nil, err
	}
	summary.Totals = totals

	recent, err := e.store.ListRecentSearches(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	summary.Recent = recent

	return summary, nil
}

// Cache exposes the engine's result cache for administrative operations.
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Indexer exposes the engine's file catalog maintainer.
func (e *Engine) Indexer() *indexer.Indexer {
	return e.indexer
}
