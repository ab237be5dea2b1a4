package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dkorolev/flatgrep/internal/cache"
	"github.com/dkorolev/flatgrep/internal/config"
	"github.com/dkorolev/flatgrep/internal/engine"
	"github.com/dkorolev/flatgrep/internal/indexer"
	"github.com/dkorolev/flatgrep/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "flatgrep-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DatabaseFileName is the SQLite file kept in the cache directory
	DatabaseFileName = "flatgrep.db"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	cfg     *config.Config
	storage storage.Storage
	engine  *engine.Engine
	logger  *slog.Logger
}

// NewServer creates a new MCP server instance over the given
// configuration. It opens the backing database and loads the persisted
// result cache.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(cfg.CacheDir, DatabaseFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	resultCache := cache.New(cache.Options{
		Enabled:   cfg.CacheEnabled,
		TTL:       cfg.CacheTTL,
		MaxStored: cfg.CacheMaxStored,
		Storage:   store,
		Logger:    logger,
	})
	if err := resultCache.Load(context.Background()); err != nil {
		logger.Warn("failed to load persisted cache", "error", err)
	}

	idx := indexer.New(store, cfg, logger)
	eng := engine.New(cfg, store, resultCache, idx, logger)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		cfg:     cfg,
		storage: store,
		engine:  eng,
		logger:  logger,
	}

	if err := s.registerTools(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	s.logger.Info("mcp server starting", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchRecordsTool(), s.handleSearchRecords)
	s.mcp.AddTool(classifyLineTool(), s.handleClassifyLine)
	s.mcp.AddTool(extractPatternsTool(), s.handleExtractPatterns)
	s.mcp.AddTool(indexFilesTool(), s.handleIndexFiles)
	s.mcp.AddTool(cacheStatsTool(), s.handleCacheStats)
	s.mcp.AddTool(clearCacheTool(), s.handleClearCache)
	s.mcp.AddTool(searchStatsTool(), s.handleSearchStats)
	return nil
}
