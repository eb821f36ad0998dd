package types

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the chunking engine
var (
	// ErrInvalidConfig is returned when a ChunkingConfig violates its invariants
	ErrInvalidConfig = errors.New("invalid chunking config")
	// ErrEmptyContent is returned when document content is empty or whitespace-only
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrMissingDocumentID is returned when the document identifier is absent
	ErrMissingDocumentID = errors.New("document ID is required")
)

// ChunkingError wraps an unexpected failure while chunking a specific
// document, carrying the document id and the underlying cause.
type ChunkingError struct {
	DocumentID string
	Err        error
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking document %s: %v", e.DocumentID, e.Err)
}

func (e *ChunkingError) Unwrap() error {
	return e.Err
}
