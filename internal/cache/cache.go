package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dkorolev/flatgrep/internal/storage"
	"github.com/dkorolev/flatgrep/pkg/types"
)

// DefaultTTL is the entry lifetime used when no TTL is configured.
const DefaultTTL = time.Hour

// DefaultMaxStored caps how many records a single entry keeps.
const DefaultMaxStored = 1000

// Hit is a cache read result. ResultCount is the total number of matches
// the original search produced, which may exceed len(Records) when the
// entry was truncated at write time.
type Hit struct {
	Records     []types.MatchRecord
	ResultCount int
	Query       string
	Timestamp   time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Enabled bool    `json:"enabled"`
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Options configures a Cache.
type Options struct {
	Enabled   bool
	TTL       time.Duration
	MaxStored int
	Storage   storage.Storage // optional write-through store
	Logger    *slog.Logger
}

type entry struct {
	query       string
	records     []types.MatchRecord
	resultCount int
	timestamp   time.Time
}

// Cache is a TTL-bound, fingerprint-keyed result cache. All methods are
// safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	enabled   bool
	ttl       time.Duration
	maxStored int
	entries   map[string]*entry
	hits      int64
	misses    int64
	store     storage.Storage
	logger    *slog.Logger

	// now is swappable so expiry is testable without sleeping.
	now func() time.Time
}

// New creates a cache from opts. A nil Storage keeps the cache purely
// in-memory.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxStored <= 0 {
		opts.MaxStored = DefaultMaxStored
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		enabled:   opts.Enabled,
		ttl:       opts.TTL,
		maxStored: opts.MaxStored,
		entries:   make(map[string]*entry),
		store:     opts.Storage,
		logger:    logger,
		now:       time.Now,
	}
}

// Load populates the cache from the backing store, dropping entries that
// expired while the process was down. Counters survive restarts.
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil || !c.enabled {
		return nil
	}

	stored, err := c.store.ListCacheEntries(ctx)
	if err != nil {
		return err
	}
	counters, err := c.store.GetCacheCounters(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	loaded, expired := 0, 0
	for _, e := range stored {
		if now.Sub(e.Timestamp) >= c.ttl {
			expired++
			if err := c.store.DeleteCacheEntry(ctx, e.Fingerprint); err != nil {
				c.logger.Warn("failed to delete expired cache entry",
					"fingerprint", e.Fingerprint, "error", err)
			}
			continue
		}
		c.entries[e.Fingerprint] = &entry{
			query:       e.Query,
			records:     e.Records,
			resultCount: e.ResultCount,
			timestamp:   e.Timestamp,
		}
		loaded++
	}
	c.hits = counters.Hits
	c.misses = counters.Misses

	c.logger.Info("cache loaded", "entries", loaded, "expired", expired)
	return nil
}

// Get looks up the query's entry. An entry expires once its age reaches
// the TTL; expired entries are deleted and count as misses. The second
// return value reports whether a live entry existed.
func (c *Cache) Get(ctx context.Context, query types.Query) (*Hit, bool) {
	if !c.enabled {
		return nil, false
	}

	fingerprint := query.Fingerprint()

	c.mu.Lock()
	e, ok := c.entries[fingerprint]
	if ok && c.now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, fingerprint)
		ok = false
		defer c.deleteStored(ctx, fingerprint)
	}
	if !ok {
		c.misses++
		c.mu.Unlock()
		c.persistCounters(ctx)
		return nil, false
	}
	c.hits++
	hit := &Hit{
		Records:     e.records,
		ResultCount: e.resultCount,
		Query:       e.query,
		Timestamp:   e.timestamp,
	}
	c.mu.Unlock()

	c.persistCounters(ctx)
	return hit, true
}

// Put stores the query's results. resultCount is the total match count
// before any truncation; only the first MaxStored records are kept.
func (c *Cache) Put(ctx context.Context, query types.Query, records []types.MatchRecord, resultCount int) {
	if !c.enabled {
		return
	}

	stored := records
	if len(stored) > c.maxStored {
		stored = stored[:c.maxStored]
	}

	fingerprint := query.Fingerprint()
	e := &entry{
		query:       query.Text,
		records:     stored,
		resultCount: resultCount,
		timestamp:   c.now(),
	}

	c.mu.Lock()
	c.entries[fingerprint] = e
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	err := c.store.UpsertCacheEntry(ctx, &storage.CacheEntry{
		Fingerprint: fingerprint,
		Query:       e.query,
		Records:     e.records,
		Timestamp:   e.timestamp,
		ResultCount: e.resultCount,
	})
	if err != nil {
		c.logger.Warn("failed to persist cache entry", "fingerprint", fingerprint, "error", err)
	}
}

// Clear drops every entry and resets the hit/miss counters, in memory
// and in the backing store.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.ClearCache(ctx)
}

// Stats returns current counters and entry count.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Enabled: c.enabled,
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Enabled reports whether the cache participates in searches.
func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) deleteStored(ctx context.Context, fingerprint string) {
	if c.store == nil {
		return
	}
	if err := c.store.DeleteCacheEntry(ctx, fingerprint); err != nil {
		c.logger.Warn("failed to delete expired cache entry",
			"fingerprint", fingerprint, "error", err)
	}
}

func (c *Cache) persistCounters(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	counters := storage.CacheCounters{Hits: c.hits, Misses: c.misses}
	c.mu.Unlock()
	if err := c.store.SaveCacheCounters(ctx, counters); err != nil {
		c.logger.Warn("failed to persist cache counters", "error", err)
	}
}
