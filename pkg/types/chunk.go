package types

import (
	"errors"
	"fmt"
)

// Reserved metadata keys set by the chunk assembler. Caller-supplied
// metadata never overwrites these.
const (
	MetaDocumentID  = "document_id"
	MetaChunkNumber = "chunk_number"
	MetaTotalChunks = "total_chunks"
	MetaTokenCount  = "token_count"
	MetaCharCount   = "char_count"
	MetaChunkType   = "chunk_type"
)

// Chunk is a bounded-size span of document text plus metadata, the unit
// produced by the chunking engine and consumed by embedding and storage.
// A Chunk is created once and never mutated afterward.
type Chunk struct {
	// ID is derived as {document_id}#chunk{1-based number}
	ID       string
	Content  string
	Metadata map[string]any
}

// ChunkID builds the deterministic chunk identifier for a document
func ChunkID(documentID string, number int) string {
	return fmt.Sprintf("%s#chunk%d", documentID, number)
}

// Validate checks if the chunk is well-formed
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return errors.New("chunk ID cannot be empty")
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if c.Metadata == nil {
		return errors.New("chunk metadata is required")
	}
	return nil
}

// TokenCount returns the token count recorded in the chunk metadata,
// or 0 when absent
func (c *Chunk) TokenCount() int {
	if n, ok := c.Metadata[MetaTokenCount].(int); ok {
		return n
	}
	return 0
}

// ChunkNumber returns the 1-based position recorded in the chunk metadata,
// or 0 when absent
func (c *Chunk) ChunkNumber() int {
	if n, ok := c.Metadata[MetaChunkNumber].(int); ok {
		return n
	}
	return 0
}
