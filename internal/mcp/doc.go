// Package mcp implements the Model Context Protocol (MCP) server for DocVector.
//
// The server exposes six tools to MCP clients:
//   - process_document: Chunk, embed, and store a document
//   - semantic_search: Search stored chunks by meaning
//   - read_document: Read back a document's chunks in order
//   - list_documents: List indexed documents with counts
//   - delete_document: Remove a document and its chunks
//   - index_stats: Report index statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout carries protocol messages only; all logging goes to stderr.
//
// # Tool: process_document
//
//	Request:
//	{
//	  "name": "process_document",
//	  "arguments": {
//	    "document_id": "readme",
//	    "content": "full document text ...",
//	    "namespace": "docs",
//	    "metadata": {"source": "import"}
//	  }
//	}
//
//	Response:
//	{
//	  "document_id": "readme",
//	  "chunks_created": 12,
//	  "total_tokens": 5840,
//	  "embedding_dimension": 1536,
//	  "duration_ms": 420
//	}
//
// # Tool: semantic_search
//
//	Request:
//	{
//	  "name": "semantic_search",
//	  "arguments": {
//	    "query": "how are chunks overlapped?",
//	    "top_k": 5,
//	    "namespace": "docs",
//	    "min_score": 0.5
//	  }
//	}
//
// The response is a plain-text context block, one entry per hit:
//
//	Retrieved Contexts:
//
//	Result 1 | Similarity: 0.912 | Document ID: readme
//	<chunk content>
//	----------
//
// # Error Handling
//
// Failures are returned as JSON-RPC errors:
//
//	{
//	  "error": {
//	    "code": -32010,
//	    "message": "document content is empty"
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32010: Document content empty or whitespace-only
//   - -32011: Document id missing
//   - -32012: Chunking failed
//   - -32013: Embedding provider failed
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "docvector": {
//	      "command": "/usr/local/bin/docvector",
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
//
// Chunking behavior is tunable via DOCVECTOR_TARGET_TOKENS,
// DOCVECTOR_MAX_TOKENS, DOCVECTOR_OVERLAP_TOKENS, and DOCVECTOR_TOKENIZER.
package mcp
