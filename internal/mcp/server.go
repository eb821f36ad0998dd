package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mark3labs/mcp-go/server"

	"github.com/vektano/docvector-mcp/internal/chunker"
	"github.com/vektano/docvector-mcp/internal/embedder"
	"github.com/vektano/docvector-mcp/internal/processor"
	"github.com/vektano/docvector-mcp/internal/searcher"
	"github.com/vektano/docvector-mcp/internal/storage"
	"github.com/vektano/docvector-mcp/internal/tokenizer"
	"github.com/vektano/docvector-mcp/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "docvector-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.docvector/indices"
)

// Chunking environment overrides
const (
	EnvTargetTokens  = "DOCVECTOR_TARGET_TOKENS"
	EnvMaxTokens     = "DOCVECTOR_MAX_TOKENS"
	EnvOverlapTokens = "DOCVECTOR_OVERLAP_TOKENS"
	EnvTokenizerID   = "DOCVECTOR_TOKENIZER"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   storage.Storage
	embedder  embedder.Embedder
	processor *processor.Processor
	searcher  *searcher.Searcher

	// Base chunking setup, kept so per-request overrides can derive a
	// chunker without reloading the tokenizer
	chunkConfig types.ChunkingConfig
	counter     tokenizer.TokenCounter
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".docvector", "indices")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "docvector.db")

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// One embedder shared by processor and searcher so the embedding
	// cache serves both indexing and queries
	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	config := chunkingConfigFromEnv()
	counter, err := tokenizer.New(config.TokenizerID)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	ch, err := chunker.New(config, counter)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize chunker: %w", err)
	}

	s := &Server{
		mcp:         server.NewMCPServer(ServerName, ServerVersion),
		storage:     store,
		embedder:    emb,
		processor:   processor.New(ch, emb, store),
		searcher:    searcher.New(store, emb),
		chunkConfig: config,
		counter:     counter,
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
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(processDocumentTool(), s.handleProcessDocument)
	s.mcp.AddTool(semanticSearchTool(), s.handleSemanticSearch)
	s.mcp.AddTool(readDocumentTool(), s.handleReadDocument)
	s.mcp.AddTool(listDocumentsTool(), s.handleListDocuments)
	s.mcp.AddTool(deleteDocumentTool(), s.handleDeleteDocument)
	s.mcp.AddTool(indexStatsTool(), s.handleIndexStats)
	return nil
}

// chunkingConfigFromEnv builds the chunking configuration from defaults
// overridden by DOCVECTOR_* environment variables. Invalid overrides are
// caught by Validate when the chunker is constructed.
func chunkingConfigFromEnv() types.ChunkingConfig {
	config := types.DefaultChunkingConfig()

	if v := envInt(EnvTargetTokens); v != nil {
		config.TargetTokens = *v
	}
	if v := envInt(EnvMaxTokens); v != nil {
		config.MaxTokens = *v
	}
	if v := envInt(EnvOverlapTokens); v != nil {
		config.OverlapTokens = *v
	}
	if v := os.Getenv(EnvTokenizerID); v != "" {
		config.TokenizerID = v
	}

	return config
}

// envInt parses an integer environment variable, returning nil when unset
// or malformed
func envInt(key string) *int {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
