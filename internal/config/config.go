package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "flatgrep.yaml"

// Config holds every tunable of the search engine in one place. All fields
// have working defaults; a missing config file is not an error.
type Config struct {
	// DataDir is the root directory scanned for data files.
	DataDir string `yaml:"data_dir"`

	// CacheDir holds the result-cache database and the index lock file.
	CacheDir string `yaml:"cache_dir"`

	// LogsDir is where log files are written.
	LogsDir string `yaml:"logs_dir"`

	// Extensions is the allow-list of file extensions considered during
	// discovery. Matching is case-insensitive.
	Extensions []string `yaml:"extensions"`

	// EncodingPriority is the ordered list of text encodings the buffered
	// scan strategy tries before committing to one.
	EncodingPriority []string `yaml:"encoding_priority"`

	// MmapThresholdBytes is the file size above which the memory-mapped
	// scan strategy is used instead of the buffered one.
	MmapThresholdBytes int64 `yaml:"mmap_threshold_bytes"`

	// MaxResultsPerFile caps the matches kept from a single file.
	MaxResultsPerFile int `yaml:"max_results_per_file"`

	// MaxTotalResults caps the final aggregated result set.
	MaxTotalResults int `yaml:"max_total_results"`

	// MaxWorkers overrides the derived worker count when > 0.
	MaxWorkers int `yaml:"max_workers"`

	// CacheEnabled toggles the result cache.
	CacheEnabled bool `yaml:"cache_enabled"`

	// CacheTTL is how long a cached result set stays valid.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// CacheMaxStored caps how many records a single cache entry persists,
	// independently of MaxTotalResults.
	CacheMaxStored int `yaml:"cache_max_stored"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with documented default values.
func Default() *Config {
	return &Config{
		DataDir:            "data",
		CacheDir:           "cache",
		LogsDir:            "logs",
		Extensions:         []string{".txt", ".csv"},
		EncodingPriority:   []string{"utf-8", "windows-1251", "latin-1", "cp866"},
		MmapThresholdBytes: 100 * 1024 * 1024,
		MaxResultsPerFile:  1000,
		MaxTotalResults:    10000,
		MaxWorkers:         0, // derived from core and file count
		CacheEnabled:       true,
		CacheTTL:           time.Hour,
		CacheMaxStored:     1000,
		LogLevel:           "info",
	}
}

// Load reads configuration from path, merging file values over defaults.
// A missing file returns the defaults without error; a malformed file is
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are accepted in Go syntax ("1h30m") or bare seconds.
	type yamlConfig struct {
		DataDir            string   `yaml:"data_dir"`
		CacheDir           string   `yaml:"cache_dir"`
		LogsDir            string   `yaml:"logs_dir"`
		Extensions         []string `yaml:"extensions"`
		EncodingPriority   []string `yaml:"encoding_priority"`
		MmapThresholdBytes int64    `yaml:"mmap_threshold_bytes"`
		MaxResultsPerFile  int      `yaml:"max_results_per_file"`
		MaxTotalResults    int      `yaml:"max_total_results"`
		MaxWorkers         int      `yaml:"max_workers"`
		CacheEnabled       *bool    `yaml:"cache_enabled"`
		CacheTTL           string   `yaml:"cache_ttl"`
		CacheMaxStored     int      `yaml:"cache_max_stored"`
		LogLevel           string   `yaml:"log_level"`
	}

	var ycfg yamlConfig
	if err := yaml.Unmarshal(data, &ycfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if ycfg.DataDir != "" {
		cfg.DataDir = ycfg.DataDir
	}
	if ycfg.CacheDir != "" {
		cfg.CacheDir = ycfg.CacheDir
	}
	if ycfg.LogsDir != "" {
		cfg.LogsDir = ycfg.LogsDir
	}
	if len(ycfg.Extensions) > 0 {
		cfg.Extensions = ycfg.Extensions
	}
	if len(ycfg.EncodingPriority) > 0 {
		cfg.EncodingPriority = ycfg.EncodingPriority
	}
	if ycfg.MmapThresholdBytes > 0 {
		cfg.MmapThresholdBytes = ycfg.MmapThresholdBytes
	}
	if ycfg.MaxResultsPerFile > 0 {
		cfg.MaxResultsPerFile = ycfg.MaxResultsPerFile
	}
	if ycfg.MaxTotalResults > 0 {
		cfg.MaxTotalResults = ycfg.MaxTotalResults
	}
	if ycfg.MaxWorkers > 0 {
		cfg.MaxWorkers = ycfg.MaxWorkers
	}
	if ycfg.CacheEnabled != nil {
		cfg.CacheEnabled = *ycfg.CacheEnabled
	}
	if ycfg.CacheTTL != "" {
		ttl, err := parseTTL(ycfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_ttl %q: %w", ycfg.CacheTTL, err)
		}
		cfg.CacheTTL = ttl
	}
	if ycfg.CacheMaxStored > 0 {
		cfg.CacheMaxStored = ycfg.CacheMaxStored
	}
	if ycfg.LogLevel != "" {
		cfg.LogLevel = ycfg.LogLevel
	}

	return cfg, nil
}

// parseTTL accepts "3600s"-style Go durations and bare integer seconds.
func parseTTL(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var secs int64
	if _, err := fmt.Sscanf(s, "%d", &secs); err != nil {
		return 0, fmt.Errorf("not a duration or second count")
	}
	return time.Duration(secs) * time.Second, nil
}

// Save writes the configuration to path as YAML. The TTL is written in Go
// duration syntax so the file stays hand-editable.
func (c *Config) Save(path string) error {
	type persisted struct {
		DataDir            string   `yaml:"data_dir"`
		CacheDir           string   `yaml:"cache_dir"`
		LogsDir            string   `yaml:"logs_dir"`
		Extensions         []string `yaml:"extensions"`
		EncodingPriority   []string `yaml:"encoding_priority"`
		MmapThresholdBytes int64    `yaml:"mmap_threshold_bytes"`
		MaxResultsPerFile  int      `yaml:"max_results_per_file"`
		MaxTotalResults    int      `yaml:"max_total_results"`
		MaxWorkers         int      `yaml:"max_workers"`
		CacheEnabled       bool     `yaml:"cache_enabled"`
		CacheTTL           string   `yaml:"cache_ttl"`
		CacheMaxStored     int      `yaml:"cache_max_stored"`
		LogLevel           string   `yaml:"log_level"`
	}

	data, err := yaml.Marshal(&persisted{
		DataDir:            c.DataDir,
		CacheDir:           c.CacheDir,
		LogsDir:            c.LogsDir,
		Extensions:         c.Extensions,
		EncodingPriority:   c.EncodingPriority,
		MmapThresholdBytes: c.MmapThresholdBytes,
		MaxResultsPerFile:  c.MaxResultsPerFile,
		MaxTotalResults:    c.MaxTotalResults,
		MaxWorkers:         c.MaxWorkers,
		CacheEnabled:       c.CacheEnabled,
		CacheTTL:           c.CacheTTL.String(),
		CacheMaxStored:     c.CacheMaxStored,
		LogLevel:           c.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data, cache and logs directories if absent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.CacheDir, c.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Workers returns the worker count for fileCount files: the configured
// override when set, otherwise up to 2x the core count for I/O-bound scans,
// and never more workers than files.
func (c *Config) Workers(fileCount int) int {
	cores := runtime.NumCPU()

	if c.MaxWorkers > 0 {
		if fileCount > 0 && c.MaxWorkers > fileCount {
			return fileCount
		}
		return c.MaxWorkers
	}

	switch {
	case fileCount > cores*2:
		return cores * 2
	case fileCount > cores:
		return cores
	default:
		if fileCount < 1 {
			return 1
		}
		return fileCount
	}
}
