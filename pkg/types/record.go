package types

import (
	"time"
)

// DatabaseFile is an immutable snapshot of a discovered data file, taken at
// discovery time. A file that changes mid-scan does not retroactively
// invalidate scans already in flight.
type DatabaseFile struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// MatchRecord is one matched line together with its classified fields.
// LineNumber is 1-based and counted within the single encoding the scan
// committed to before reading began.
type MatchRecord struct {
	File       string            `json:"file"`
	FilePath   string            `json:"file_path"`
	LineNumber int               `json:"line_number"`
	RawLine    string            `json:"raw_line"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// SearchStatistics describes a single completed search invocation. The
// values are derived per call, never accumulated in place.
type SearchStatistics struct {
	TotalResults  int           `json:"total_results"`
	FilesSearched int           `json:"files_searched"`
	LinesSearched int64         `json:"lines_searched"`
	SearchTime    time.Duration `json:"search_time"`
	CacheHit      bool          `json:"cache_hit"`
}
