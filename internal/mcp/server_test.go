package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vektano/docvector-mcp/internal/embedder"
)

// newTestServer builds a server backed by a temp database and the local
// embedding provider so no network access is needed
func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv(embedder.EnvProvider, embedder.ProviderLocal)

	server, err := NewServer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.storage.Close() })
	return server
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewServer_Components(t *testing.T) {
	server := newTestServer(t)

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.storage)
	assert.NotNil(t, server.embedder)
	assert.NotNil(t, server.processor)
	assert.NotNil(t, server.searcher)
}

func TestProcessDocument_RoundTrip(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	result, err := server.handleProcessDocument(ctx, callRequest("process_document", map[string]interface{}{
		"document_id": "readme",
		"content":     "DocVector chunks documents into token-bounded spans.\n\nEach chunk is embedded and stored for semantic search.",
		"namespace":   "docs",
	}))
	require.NoError(t, err)

	out := resultText(t, result)
	assert.Contains(t, out, `"document_id": "readme"`)
	assert.Contains(t, out, "chunks_created")

	// Read it back
	result, err = server.handleReadDocument(ctx, callRequest("read_document", map[string]interface{}{
		"document_id": "readme",
		"namespace":   "docs",
	}))
	require.NoError(t, err)
	out = resultText(t, result)
	assert.Contains(t, out, `"found": true`)
	assert.Contains(t, out, "token-bounded spans")
}

func TestProcessDocument_MissingID(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleProcessDocument(context.Background(), callRequest("process_document", map[string]interface{}{
		"content": "text without an id",
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeMissingDocument, mcpErr.Code)
}

func TestProcessDocument_EmptyContent(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleProcessDocument(context.Background(), callRequest("process_document", map[string]interface{}{
		"document_id": "doc-1",
		"content":     "   \n\t  ",
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyContent, mcpErr.Code)
}

func TestProcessDocument_ChunkingOverrides(t *testing.T) {
	server := newTestServer(t)

	// An overlap at or above the target violates the config invariants
	_, err := server.handleProcessDocument(context.Background(), callRequest("process_document", map[string]interface{}{
		"document_id":    "doc-1",
		"content":        "some content",
		"target_tokens":  float64(50),
		"overlap_tokens": float64(50),
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)

	// Valid overrides process normally
	result, err := server.handleProcessDocument(context.Background(), callRequest("process_document", map[string]interface{}{
		"document_id":    "doc-1",
		"content":        "some content",
		"target_tokens":  float64(50),
		"overlap_tokens": float64(5),
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "chunks_created")
}

func TestSemanticSearch(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	_, err := server.handleProcessDocument(ctx, callRequest("process_document", map[string]interface{}{
		"document_id": "doc-1",
		"content":     "The chunker splits text at paragraph and sentence boundaries.",
	}))
	require.NoError(t, err)

	result, err := server.handleSemanticSearch(ctx, callRequest("semantic_search", map[string]interface{}{
		"query": "how is text split?",
		"top_k": float64(5),
	}))
	require.NoError(t, err)

	out := resultText(t, result)
	assert.Contains(t, out, "Retrieved Contexts:")
	assert.Contains(t, out, "Document ID: doc-1")
}

func TestSemanticSearch_EmptyQuery(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleSemanticSearch(context.Background(), callRequest("semantic_search", map[string]interface{}{
		"query": "",
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestSemanticSearch_TopKOutOfRange(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleSemanticSearch(context.Background(), callRequest("semantic_search", map[string]interface{}{
		"query": "q",
		"top_k": float64(500),
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestReadDocument_NotFound(t *testing.T) {
	server := newTestServer(t)

	result, err := server.handleReadDocument(context.Background(), callRequest("read_document", map[string]interface{}{
		"document_id": "missing",
	}))
	require.NoError(t, err)

	out := resultText(t, result)
	assert.Contains(t, out, `"found": false`)
}

func TestListAndDeleteDocuments(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"doc-1", "doc-2"} {
		_, err := server.handleProcessDocument(ctx, callRequest("process_document", map[string]interface{}{
			"document_id": id,
			"content":     "content for " + id,
		}))
		require.NoError(t, err)
	}

	result, err := server.handleListDocuments(ctx, callRequest("list_documents", nil))
	require.NoError(t, err)
	out := resultText(t, result)
	assert.Contains(t, out, `"count": 2`)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "doc-2")

	result, err = server.handleDeleteDocument(ctx, callRequest("delete_document", map[string]interface{}{
		"document_id": "doc-1",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"deleted_chunks": 1`)

	result, err = server.handleListDocuments(ctx, callRequest("list_documents", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"count": 1`)
}

func TestIndexStats(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	result, err := server.handleIndexStats(ctx, callRequest("index_stats", nil))
	require.NoError(t, err)
	out := resultText(t, result)
	assert.Contains(t, out, `"total_records": 0`)
	assert.Contains(t, out, `"provider": "local"`)
}
