// Package mcp exposes the search engine over the Model Context Protocol.
//
// The server speaks MCP over stdio and registers seven tools:
//
//   - search_records: run a query over the data files
//   - classify_line: split one line and classify its fields
//   - extract_patterns: run the named pattern library over text
//   - index_files: refresh the file catalog
//   - cache_stats: report result-cache counters
//   - clear_cache: drop all cached results
//   - search_stats: report lifetime search statistics
//
// Tool arguments arrive as loosely typed JSON maps; each handler
// validates what it needs and answers with indented JSON text. Handler
// failures are returned as MCP protocol errors with stable codes so
// clients can branch on them.
package mcp
