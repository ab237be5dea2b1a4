package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dkorolev/flatgrep/internal/classify"
	"github.com/dkorolev/flatgrep/internal/engine"
	"github.com/dkorolev/flatgrep/internal/indexer"
	"github.com/dkorolev/flatgrep/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery         = -32001 // Query parameter is empty
	ErrorCodeIndexingInProgress = -32002 // Another index update is already running
)

// handleSearchRecords handles the search_records tool invocation
func (s *Server) handleSearchRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	queryText, ok := args["query"].(string)
	if !ok || queryText == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	mode, err := types.ParseMatchMode(getStringDefault(args, "mode", string(types.MatchSubstring)))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"allowed": []string{"substring", "exact", "regex"},
		})
	}

	limit := getIntDefault(args, "limit", 100)
	if limit < 1 || limit > 1000 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 1000", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	query := types.Query{
		Text:          queryText,
		Mode:          mode,
		CaseSensitive: getBoolDefault(args, "case_sensitive", false),
	}

	var result *engine.Result
	if field := getStringDefault(args, "field", ""); field != "" {
		result, err = s.engine.SearchByField(ctx, field, queryText)
	} else {
		result, err = s.engine.Search(ctx, query)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	records := result.Records
	truncated := false
	if len(records) > limit {
		records = records[:limit]
		truncated = true
	}

	response := map[string]interface{}{
		"id":             result.ID,
		"query":          query.Normalized(),
		"query_kind":     string(classify.DetectQuery(queryText).Kind),
		"mode":           string(mode),
		"records":        records,
		"returned":       len(records),
		"truncated":      truncated,
		"total_results":  result.Stats.TotalResults,
		"files_searched": result.Stats.FilesSearched,
		"lines_searched": result.Stats.LinesSearched,
		"duration_ms":    result.Stats.SearchTime.Milliseconds(),
		"cache_hit":      result.Stats.CacheHit,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClassifyLine handles the classify_line tool invocation
func (s *Server) handleClassifyLine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	line, ok := args["line"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "line parameter is required", map[string]interface{}{
			"param":  "line",
			"reason": "missing",
		})
	}
	extension := getStringDefault(args, "extension", ".txt")

	response := map[string]interface{}{
		"line":   line,
		"tokens": classify.SplitTokens(line, extension),
		"fields": classify.Classify(line, extension),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleExtractPatterns handles the extract_patterns tool invocation
func (s *Server) handleExtractPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	text, ok := args["text"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing",
		})
	}

	var matches map[string][]string
	if names, ok := args["patterns"].([]interface{}); ok && len(names) > 0 {
		matches = make(map[string][]string)
		for _, raw := range names {
			name, ok := raw.(string)
			if !ok {
				continue
			}
			found, known := classify.ExtractNamed(name, text)
			if !known {
				return nil, newMCPError(ErrorCodeInvalidParams, "unknown pattern", map[string]interface{}{
					"param":   "patterns",
					"value":   name,
					"allowed": classify.PatternNames(),
				})
			}
			if len(found) > 0 {
				matches[name] = found
			}
		}
	} else {
		matches = classify.Extract(text)
	}

	response := map[string]interface{}{
		"matches": matches,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexFiles handles the index_files tool invocation
func (s *Server) handleIndexFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.engine.Indexer().Reindex(ctx)
	if errors.Is(err, indexer.ErrIndexBusy) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "index update already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index update failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"files_discovered": stats.FilesDiscovered,
		"files_indexed":    stats.FilesIndexed,
		"files_skipped":    stats.FilesSkipped,
		"files_failed":     stats.FilesFailed,
		"total_lines":      stats.TotalLines,
		"duration_ms":      stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCacheStats handles the cache_stats tool invocation
func (s *Server) handleCacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.engine.Cache().Stats()
	response := map[string]interface{}{
		"enabled":  stats.Enabled,
		"entries":  stats.Entries,
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"hit_rate": fmt.Sprintf("%.2f", stats.HitRate),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearCache handles the clear_cache tool invocation
func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.engine.Cache().Clear(ctx); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to clear cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"cleared": true})), nil
}

// handleSearchStats handles the search_stats tool invocation
func (s *Server) handleSearchStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recentLimit := 10
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		recentLimit = getIntDefault(args, "recent", 10)
		if recentLimit < 1 || recentLimit > 100 {
			return nil, newMCPError(ErrorCodeInvalidParams, "recent must be between 1 and 100", map[string]interface{}{
				"param": "recent",
				"value": recentLimit,
			})
		}
	}

	summary, err := s.engine.Statistics(ctx, recentLimit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read statistics", map[string]interface{}{
			"error": err.Error(),
		})
	}

	recent := make([]map[string]interface{}, 0, len(summary.Recent))
	for _, r := range summary.Recent {
		recent = append(recent, map[string]interface{}{
			"id":          r.ID,
			"query":       r.Query,
			"mode":        r.Mode,
			"results":     r.Results,
			"duration_ms": r.Duration.Milliseconds(),
			"created_at":  r.CreatedAt.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"total_searches":    summary.Totals.TotalSearches,
		"total_results":     summary.Totals.TotalResults,
		"total_duration_ms": summary.Totals.TotalDuration.Milliseconds(),
		"cache": map[string]interface{}{
			"entries": summary.Cache.Entries,
			"hits":    summary.Cache.Hits,
			"misses":  summary.Cache.Misses,
		},
		"recent": recent,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
