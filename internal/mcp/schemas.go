package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dkorolev/flatgrep/internal/classify"
)

// searchRecordsTool returns the tool definition for search_records
func searchRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_records",
		Description: "Search the flat data files for lines matching a query and return classified records",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text; surrounding whitespace and letter case are ignored",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Match mode",
					"enum":        []string{"substring", "exact", "regex"},
					"default":     "substring",
				},
				"case_sensitive": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, match case exactly",
					"default":     false,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of records to return (1-1000)",
					"default":     100,
					"minimum":     1,
					"maximum":     1000,
				},
				"field": map[string]interface{}{
					"type":        "string",
					"description": "Optional classified field the query must match exactly (identifier, phone, email, username, first_name, last_name, patronymic)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// classifyLineTool returns the tool definition for classify_line
func classifyLineTool() mcp.Tool {
	return mcp.Tool{
		Name:        "classify_line",
		Description: "Split a single line into tokens and classify each into a named field",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"line": map[string]interface{}{
					"type":        "string",
					"description": "The raw line to classify",
				},
				"extension": map[string]interface{}{
					"type":        "string",
					"description": "File extension hint for delimiter detection (e.g. '.csv')",
					"default":     ".txt",
				},
			},
			Required: []string{"line"},
		},
	}
}

// extractPatternsTool returns the tool definition for extract_patterns
func extractPatternsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "extract_patterns",
		Description: "Run the named pattern library (phones, emails, hashes, documents) over a piece of text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to scan",
				},
				"patterns": map[string]interface{}{
					"type":        "array",
					"description": "Pattern names to apply; all patterns when omitted",
					"items": map[string]interface{}{
						"type": "string",
						"enum": classify.PatternNames(),
					},
				},
			},
			Required: []string{"text"},
		},
	}
}

// indexFilesTool returns the tool definition for index_files
func indexFilesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_files",
		Description: "Discover data files and refresh the file catalog (sizes, line counts, change tags)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// cacheStatsTool returns the tool definition for cache_stats
func cacheStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cache_stats",
		Description: "Report result-cache entry count and hit/miss counters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearCacheTool returns the tool definition for clear_cache
func clearCacheTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop every cached search result and reset the hit/miss counters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// searchStatsTool returns the tool definition for search_stats
func searchStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_stats",
		Description: "Report lifetime search totals and the most recent invocations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"recent": map[string]interface{}{
					"type":        "integer",
					"description": "How many recent searches to include (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}
