package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, []string{".txt", ".csv"}, cfg.Extensions)
	assert.Equal(t, int64(100*1024*1024), cfg.MmapThresholdBytes)
	assert.Equal(t, 1000, cfg.MaxResultsPerFile)
	assert.Equal(t, 10000, cfg.MaxTotalResults)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatgrep.yaml")
	content := `
data_dir: /srv/dumps
max_total_results: 500
cache_enabled: false
cache_ttl: 90s
encoding_priority: ["utf-8", "cp866"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/dumps", cfg.DataDir)
	assert.Equal(t, 500, cfg.MaxTotalResults)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"utf-8", "cp866"}, cfg.EncodingPriority)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1000, cfg.MaxResultsPerFile)
	assert.Equal(t, "logs", cfg.LogsDir)
}

func TestLoad_BareSecondsTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatgrep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_ttl: \"3600\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatgrep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml:::"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flatgrep.yaml")

	cfg := Default()
	cfg.DataDir = filepath.Join(dir, "bd")
	cfg.MaxWorkers = 4
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, 4, loaded.MaxWorkers)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DataDir = filepath.Join(dir, "bd")
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.LogsDir = filepath.Join(dir, "logs")

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.DataDir, cfg.CacheDir, cfg.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWorkers(t *testing.T) {
	cores := runtime.NumCPU()
	cfg := Default()

	tests := []struct {
		name      string
		override  int
		fileCount int
		want      int
	}{
		{"no files", 0, 0, 1},
		{"fewer files than cores", 0, 1, 1},
		{"more files than cores", 0, cores + 1, cores},
		{"far more files than cores", 0, cores*2 + 1, cores * 2},
		{"override", 3, cores * 10, 3},
		{"override capped by file count", 8, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.MaxWorkers = tt.override
			assert.Equal(t, tt.want, cfg.Workers(tt.fileCount))
		})
	}
}
