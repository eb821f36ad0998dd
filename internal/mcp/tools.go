package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vektano/docvector-mcp/internal/chunker"
	"github.com/vektano/docvector-mcp/internal/embedder"
	"github.com/vektano/docvector-mcp/internal/processor"
	"github.com/vektano/docvector-mcp/internal/searcher"
	"github.com/vektano/docvector-mcp/internal/storage"
	"github.com/vektano/docvector-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyContent    = -32010 // Document content is empty or whitespace
	ErrorCodeMissingDocument = -32011 // Document id missing
	ErrorCodeChunkingFailed  = -32012 // Chunking pipeline failed
	ErrorCodeEmbeddingFailed = -32013 // Embedding provider failed
)

// handleProcessDocument handles the process_document tool invocation
func (s *Server) handleProcessDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, newMCPError(ErrorCodeMissingDocument, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required", map[string]interface{}{
			"param":  "content",
			"reason": "missing",
		})
	}

	namespace := getStringDefault(args, "namespace", "")
	metadata, _ := args["metadata"].(map[string]interface{})

	proc, err := s.processorFor(args)
	if err != nil {
		return nil, err
	}

	result, err := proc.ProcessDocument(ctx, processor.ProcessRequest{
		DocumentID: documentID,
		Content:    content,
		Namespace:  namespace,
		Metadata:   metadata,
	})
	if err != nil {
		return nil, mapPipelineError(err)
	}

	response := map[string]interface{}{
		"document_id":          result.DocumentID,
		"chunks_created":       result.ChunksCreated,
		"total_tokens":         result.TotalTokens,
		"avg_tokens_per_chunk": fmt.Sprintf("%.1f", result.AvgTokensPerChunk),
		"embedding_dimension":  result.Dimension,
		"duration_ms":          result.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// processorFor returns the default processor, or one derived from
// per-request target_tokens/overlap_tokens overrides
func (s *Server) processorFor(args map[string]interface{}) (*processor.Processor, error) {
	_, hasTarget := args["target_tokens"]
	_, hasOverlap := args["overlap_tokens"]
	if !hasTarget && !hasOverlap {
		return s.processor, nil
	}

	config := s.chunkConfig
	config.TargetTokens = getIntDefault(args, "target_tokens", config.TargetTokens)
	config.OverlapTokens = getIntDefault(args, "overlap_tokens", config.OverlapTokens)
	if config.MaxTokens < config.TargetTokens {
		config.MaxTokens = config.TargetTokens
	}

	ch, err := chunker.New(config, s.counter)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking parameters", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return processor.New(ch, s.embedder, s.storage), nil
}

// handleSemanticSearch handles the semantic_search tool invocation
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	topK := getIntDefault(args, "top_k", searcher.DefaultTopK)
	if topK < 1 || topK > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Query:     query,
		TopK:      topK,
		Namespace: getStringDefault(args, "namespace", ""),
		MinScore:  getFloatDefault(args, "min_score", 0),
	})
	if err != nil {
		return nil, mapPipelineError(err)
	}

	return mcp.NewToolResultText(searcher.FormatResults(resp)), nil
}

// handleReadDocument handles the read_document tool invocation
func (s *Server) handleReadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, newMCPError(ErrorCodeMissingDocument, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}
	namespace := getStringDefault(args, "namespace", "")

	records, err := s.storage.ListDocumentChunks(ctx, documentID, namespace)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"found":       false,
			"document_id": documentID,
			"message":     "Document not indexed. Use process_document to index it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read document", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunks := make([]map[string]interface{}, len(records))
	totalTokens := 0
	for i, record := range records {
		chunks[i] = map[string]interface{}{
			"id":           record.ID,
			"chunk_number": record.ChunkNumber,
			"content":      record.Content,
			"token_count":  record.TokenCount,
		}
		totalTokens += record.TokenCount
	}

	response := map[string]interface{}{
		"found":        true,
		"document_id":  documentID,
		"chunk_count":  len(records),
		"total_tokens": totalTokens,
		"chunks":       chunks,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListDocuments handles the list_documents tool invocation
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	namespace := getStringDefault(args, "namespace", "")

	docs, err := s.storage.ListDocuments(ctx, namespace)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list documents", map[string]interface{}{
			"error": err.Error(),
		})
	}

	documents := make([]map[string]interface{}, len(docs))
	for i, doc := range docs {
		documents[i] = map[string]interface{}{
			"document_id":  doc.DocumentID,
			"namespace":    doc.Namespace,
			"chunks":       doc.Chunks,
			"total_tokens": doc.TotalTokens,
		}
	}

	response := map[string]interface{}{
		"count":     len(documents),
		"documents": documents,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteDocument handles the delete_document tool invocation
func (s *Server) handleDeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, newMCPError(ErrorCodeMissingDocument, "document_id parameter is required", map[string]interface{}{
			"param":  "document_id",
			"reason": "missing or empty",
		})
	}
	namespace := getStringDefault(args, "namespace", "")

	deleted, err := s.processor.DeleteDocument(ctx, documentID, namespace)
	if err != nil {
		return nil, mapPipelineError(err)
	}

	response := map[string]interface{}{
		"document_id":    documentID,
		"deleted_chunks": deleted,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStats handles the index_stats tool invocation
func (s *Server) handleIndexStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.storage.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get index stats", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"total_records":   stats.TotalRecords,
		"total_documents": stats.TotalDocuments,
		"namespaces":      stats.Namespaces,
		"dimension":       stats.Dimension,
		"embedding": map[string]interface{}{
			"provider": s.embedder.Provider(),
			"model":    s.embedder.Model(),
		},
		"storage": map[string]interface{}{
			"build_mode":       storage.BuildMode,
			"driver":           storage.DriverName,
			"vector_extension": storage.VectorExtensionAvailable,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
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

// mapPipelineError translates pipeline failures into MCP error codes
func mapPipelineError(err error) error {
	var chunkErr *types.ChunkingError
	switch {
	case errors.Is(err, types.ErrEmptyContent):
		return newMCPError(ErrorCodeEmptyContent, "document content is empty", nil)
	case errors.Is(err, types.ErrMissingDocumentID):
		return newMCPError(ErrorCodeMissingDocument, "document_id is required", nil)
	case errors.As(err, &chunkErr):
		return newMCPError(ErrorCodeChunkingFailed, "chunking failed", map[string]interface{}{
			"document_id": chunkErr.DocumentID,
			"error":       chunkErr.Err.Error(),
		})
	case errors.Is(err, embedder.ErrProviderFailed), errors.Is(err, embedder.ErrEmptyText),
		errors.Is(err, embedder.ErrInvalidInput), errors.Is(err, embedder.ErrBatchTooLarge):
		return newMCPError(ErrorCodeEmbeddingFailed, "embedding failed", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "operation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
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

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
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
