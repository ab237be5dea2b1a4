package scanner

import (
	"log/slog"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dkorolev/flatgrep/internal/classify"
	"github.com/dkorolev/flatgrep/pkg/types"
)

// Strategy identifies how a file is scanned.
type Strategy int

const (
	// StrategyBuffered is the line reader with the encoding ladder.
	StrategyBuffered Strategy = iota
	// StrategyMapped memory-maps the file and scans raw bytes.
	StrategyMapped
)

func (s Strategy) String() string {
	if s == StrategyMapped {
		return "mapped"
	}
	return "buffered"
}

// SelectStrategy picks the scan strategy for a file of the given size.
// Files strictly larger than threshold are memory-mapped.
func SelectStrategy(sizeBytes, thresholdBytes int64) Strategy {
	if sizeBytes > thresholdBytes {
		return StrategyMapped
	}
	return StrategyBuffered
}

// FileResult is the outcome of scanning one file. Err is set when the scan
// failed; Records holds whatever was collected before the failure, so a
// caller can distinguish "no matches" from "scan failed" while still
// treating both as a best-effort contribution.
type FileResult struct {
	File         types.DatabaseFile
	Records      []types.MatchRecord
	LinesScanned int64
	Strategy     Strategy
	Err          error
}

// Options configures a Scanner.
type Options struct {
	// PerFileCap is the maximum matches kept from a single file.
	PerFileCap int
	// MmapThreshold is the size in bytes above which files are mapped.
	MmapThreshold int64
	// EncodingPriority is the ordered encoding ladder for buffered scans.
	EncodingPriority []string
	// Logger receives per-file warnings; nil discards them.
	Logger *slog.Logger
}

// Scanner scans individual files for a query. It is safe for concurrent use
// by multiple workers.
type Scanner struct {
	perFileCap int
	threshold  int64
	encodings  []namedEncoding
	logger     *slog.Logger

	// Compiled regex-mode matchers, shared across searches.
	regexCache *lru.Cache[string, compiledPattern]
}

// New creates a Scanner. Unknown encoding names in the priority list are
// logged and skipped; an empty resulting ladder falls back to UTF-8.
func New(opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cache, err := lru.New[string, compiledPattern](128)
	if err != nil {
		// Only possible with a non-positive size.
		panic(err)
	}

	s := &Scanner{
		perFileCap: opts.PerFileCap,
		threshold:  opts.MmapThreshold,
		logger:     logger,
		regexCache: cache,
	}
	if s.perFileCap <= 0 {
		s.perFileCap = 1000
	}
	if s.threshold <= 0 {
		s.threshold = 100 * 1024 * 1024
	}

	for _, name := range opts.EncodingPriority {
		enc, err := resolveEncoding(name)
		if err != nil {
			logger.Warn("skipping unknown encoding", "encoding", name)
			continue
		}
		s.encodings = append(s.encodings, namedEncoding{name: name, enc: enc})
	}
	if len(s.encodings) == 0 {
		utf8enc, _ := resolveEncoding("utf-8")
		s.encodings = []namedEncoding{{name: "utf-8", enc: utf8enc}}
	}

	return s
}

// Scan searches one file and returns its matches in ascending line order,
// capped at the per-file maximum.
func (s *Scanner) Scan(file types.DatabaseFile, query types.Query) FileResult {
	m := s.newMatcher(query)

	var res FileResult
	strategy := SelectStrategy(file.SizeBytes, s.threshold)
	switch strategy {
	case StrategyMapped:
		res = s.scanMapped(file, m)
	default:
		res = s.scanBuffered(file, m)
	}

	res.File = file
	res.Strategy = strategy
	return res
}

// newRecord builds a MatchRecord, running the matched line through the
// field classifier.
func (s *Scanner) newRecord(file types.DatabaseFile, lineNum int, line string) types.MatchRecord {
	ext := strings.ToLower(filepath.Ext(file.Path))
	return types.MatchRecord{
		File:       file.Name,
		FilePath:   file.Path,
		LineNumber: lineNum,
		RawLine:    line,
		Fields:     classify.Classify(line, ext),
	}
}
