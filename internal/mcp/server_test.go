package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/flatgrep/internal/config"
	"github.com/dkorolev/flatgrep/internal/logging"
)

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.CacheDir = filepath.Join(base, "cache")
	cfg.LogsDir = filepath.Join(base, "logs")

	s, err := NewServer(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.storage.Close() })
	return s, cfg
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestNewServer_WiresComponents(t *testing.T) {
	s, cfg := newTestServer(t)

	assert.NotNil(t, s.engine)
	assert.NotNil(t, s.storage)
	assert.NotNil(t, s.mcp)

	// EnsureDirectories must have created the working tree
	for _, dir := range []string{cfg.DataDir, cfg.CacheDir, cfg.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestHandleSearchRecords(t *testing.T) {
	s, cfg := newTestServer(t)
	ctx := context.Background()

	content := "123456789;Ivan;+79001234567\nunrelated line\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "users.txt"), []byte(content), 0o644))

	result, err := s.handleSearchRecords(ctx, toolRequest(map[string]interface{}{
		"query": "123456789",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(1), response["total_results"])
	assert.Equal(t, "substring", response["mode"])
	assert.Equal(t, false, response["cache_hit"])

	records, ok := response["records"].([]interface{})
	require.True(t, ok)
	require.Len(t, records, 1)
}

func TestHandleSearchRecords_EmptyQuery(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.handleSearchRecords(context.Background(), toolRequest(map[string]interface{}{
		"query": "",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleSearchRecords_InvalidMode(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.handleSearchRecords(context.Background(), toolRequest(map[string]interface{}{
		"query": "ivanov",
		"mode":  "fuzzy",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleClassifyLine(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleClassifyLine(context.Background(), toolRequest(map[string]interface{}{
		"line": "123456789;Ivan;+79001234567",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	fields, ok := response["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "123456789", fields["identifier"])
	assert.Equal(t, "Ivan", fields["first_name"])
	assert.Equal(t, "+79001234567", fields["phone"])
}

func TestHandleExtractPatterns(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleExtractPatterns(context.Background(), toolRequest(map[string]interface{}{
		"text": "reach me at ivan@example.com or +79001234567",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	matches, ok := response["matches"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, matches, "email")
}

func TestHandleExtractPatterns_UnknownPattern(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.handleExtractPatterns(context.Background(), toolRequest(map[string]interface{}{
		"text":     "anything",
		"patterns": []interface{}{"no_such_pattern"},
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleIndexFiles(t *testing.T) {
	s, cfg := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "a.txt"), []byte("one\ntwo\n"), 0o644))

	result, err := s.handleIndexFiles(context.Background(), toolRequest(nil))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(1), response["files_discovered"])
	assert.Equal(t, float64(1), response["files_indexed"])
	assert.Equal(t, float64(2), response["total_lines"])
}

func TestHandleCacheLifecycle(t *testing.T) {
	s, cfg := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "a.txt"), []byte("ivanov\n"), 0o644))

	_, err := s.handleSearchRecords(ctx, toolRequest(map[string]interface{}{"query": "ivanov"}))
	require.NoError(t, err)
	_, err = s.handleSearchRecords(ctx, toolRequest(map[string]interface{}{"query": "ivanov"}))
	require.NoError(t, err)

	result, err := s.handleCacheStats(ctx, toolRequest(nil))
	require.NoError(t, err)
	stats := resultJSON(t, result)
	assert.Equal(t, float64(1), stats["entries"])
	assert.Equal(t, float64(1), stats["hits"])
	assert.Equal(t, float64(1), stats["misses"])

	result, err = s.handleClearCache(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, true, resultJSON(t, result)["cleared"])

	result, err = s.handleCacheStats(ctx, toolRequest(nil))
	require.NoError(t, err)
	stats = resultJSON(t, result)
	assert.Equal(t, float64(0), stats["entries"])
	assert.Equal(t, float64(0), stats["hits"])
}

func TestHandleSearchStats(t *testing.T) {
	s, cfg := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "a.txt"), []byte("ivanov\n"), 0o644))

	_, err := s.handleSearchRecords(ctx, toolRequest(map[string]interface{}{"query": "ivanov"}))
	require.NoError(t, err)

	result, err := s.handleSearchStats(ctx, toolRequest(nil))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(1), response["total_searches"])

	recent, ok := response["recent"].([]interface{})
	require.True(t, ok)
	require.Len(t, recent, 1)
}
