package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// processDocumentTool returns the tool definition for process_document
func processDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "process_document",
		Description: "Chunk a document into token-bounded spans, embed each chunk, and store the vectors for semantic search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable identifier for the document; re-processing the same id replaces its chunks",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Raw document text to chunk and index",
				},
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Optional namespace to isolate document collections",
					"default":     "",
				},
				"metadata": map[string]interface{}{
					"type":        "object",
					"description": "Optional key/value metadata attached to every chunk",
				},
				"target_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Override the desired chunk size in tokens for this document",
					"minimum":     1,
				},
				"overlap_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Override the token overlap between adjacent chunks for this document",
					"minimum":     0,
				},
			},
			Required: []string{"document_id", "content"},
		},
	}
}

// semanticSearchTool returns the tool definition for semantic_search
func semanticSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantic_search",
		Description: "Search indexed documents by meaning and return the most similar chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Optional namespace to search within",
					"default":     "",
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity threshold (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// readDocumentTool returns the tool definition for read_document
func readDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "read_document",
		Description: "Read back all stored chunks of a document in order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the document to read",
				},
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Optional namespace the document lives in",
					"default":     "",
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// listDocumentsTool returns the tool definition for list_documents
func listDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents with chunk and token counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Optional namespace to list; empty lists all namespaces",
					"default":     "",
				},
			},
		},
	}
}

// deleteDocumentTool returns the tool definition for delete_document
func deleteDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and all of its stored chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the document to delete",
				},
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Optional namespace the document lives in",
					"default":     "",
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// indexStatsTool returns the tool definition for index_stats
func indexStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_stats",
		Description: "Report index statistics: record and document counts, namespaces, and embedding configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
