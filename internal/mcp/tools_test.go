package mcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vektano/docvector-mcp/internal/embedder"
	"github.com/vektano/docvector-mcp/pkg/types"
)

func TestMCPError_Error(t *testing.T) {
	err := newMCPError(ErrorCodeInvalidParams, "bad params", nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	assert.Equal(t, "MCP error -32602: bad params", mcpErr.Error())
}

func TestMapPipelineError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "empty content",
			err:      types.ErrEmptyContent,
			wantCode: ErrorCodeEmptyContent,
		},
		{
			name:     "wrapped empty content",
			err:      fmt.Errorf("pipeline: %w", types.ErrEmptyContent),
			wantCode: ErrorCodeEmptyContent,
		},
		{
			name:     "missing document id",
			err:      types.ErrMissingDocumentID,
			wantCode: ErrorCodeMissingDocument,
		},
		{
			name:     "chunking error",
			err:      &types.ChunkingError{DocumentID: "doc-1", Err: errors.New("boom")},
			wantCode: ErrorCodeChunkingFailed,
		},
		{
			name:     "provider failure",
			err:      fmt.Errorf("embed: %w", embedder.ErrProviderFailed),
			wantCode: ErrorCodeEmbeddingFailed,
		},
		{
			name:     "unknown error",
			err:      errors.New("something else"),
			wantCode: ErrorCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mcpErr *MCPError
			require.ErrorAs(t, mapPipelineError(tt.err), &mcpErr)
			assert.Equal(t, tt.wantCode, mcpErr.Code)
		})
	}
}

func TestParameterHelpers(t *testing.T) {
	args := map[string]interface{}{
		"str":       "value",
		"int_json":  float64(7), // JSON numbers decode as float64
		"float":     0.75,
		"wrongtype": true,
	}

	assert.Equal(t, "value", getStringDefault(args, "str", "fallback"))
	assert.Equal(t, "fallback", getStringDefault(args, "missing", "fallback"))
	assert.Equal(t, "fallback", getStringDefault(args, "wrongtype", "fallback"))

	assert.Equal(t, 7, getIntDefault(args, "int_json", 1))
	assert.Equal(t, 1, getIntDefault(args, "missing", 1))

	assert.InDelta(t, 0.75, getFloatDefault(args, "float", 0), 1e-9)
	assert.Equal(t, 0.0, getFloatDefault(args, "missing", 0))

	// Nil maps are safe to read
	assert.Equal(t, "fallback", getStringDefault(nil, "str", "fallback"))
}

func TestToolDefinitions(t *testing.T) {
	tools := map[string]string{
		"process_document": processDocumentTool().Name,
		"semantic_search":  semanticSearchTool().Name,
		"read_document":    readDocumentTool().Name,
		"list_documents":   listDocumentsTool().Name,
		"delete_document":  deleteDocumentTool().Name,
		"index_stats":      indexStatsTool().Name,
	}
	for want, got := range tools {
		assert.Equal(t, want, got)
	}

	assert.Equal(t, []string{"document_id", "content"}, processDocumentTool().InputSchema.Required)
	assert.Equal(t, []string{"query"}, semanticSearchTool().InputSchema.Required)
	assert.Equal(t, []string{"document_id"}, deleteDocumentTool().InputSchema.Required)
}
