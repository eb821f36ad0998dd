package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")
)

// Record is a stored chunk vector: content, metadata, and embedding,
// keyed by the chunk's string id ({document_id}#chunk{n})
type Record struct {
	ID          string
	DocumentID  string
	Namespace   string
	ChunkNumber int
	Content     string
	Metadata    map[string]any
	Vector      []float32
	TokenCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DocumentInfo summarizes one stored document within a namespace
type DocumentInfo struct {
	DocumentID  string
	Namespace   string
	Chunks      int
	TotalTokens int
}

// VectorResult is a search hit with its hydrated record
type VectorResult struct {
	Record *Record
	Score  float64 // Cosine similarity, higher is better
}

// IndexStats describes the stored index
type IndexStats struct {
	TotalRecords   int
	TotalDocuments int
	Namespaces     map[string]int // Records per namespace
	Dimension      int            // 0 when the index is empty
}

// Storage persists and queries chunk vector records
type Storage interface {
	// UpsertRecords inserts or replaces records in one transaction;
	// on error no record from the batch is persisted
	UpsertRecords(ctx context.Context, records []*Record) error

	// GetRecord fetches one record by id
	GetRecord(ctx context.Context, id string) (*Record, error)

	// FetchRecords fetches records by id, skipping missing ids
	FetchRecords(ctx context.Context, ids []string) ([]*Record, error)

	// ListDocumentChunks returns all chunks of a document ordered by
	// chunk number
	ListDocumentChunks(ctx context.Context, documentID, namespace string) ([]*Record, error)

	// ListDocuments summarizes stored documents in a namespace;
	// empty namespace lists all
	ListDocuments(ctx context.Context, namespace string) ([]DocumentInfo, error)

	// DeleteDocument removes every record of a document, returning the
	// number of records removed
	DeleteDocument(ctx context.Context, documentID, namespace string) (int, error)

	// SearchVector returns the topK most similar records by cosine
	// similarity, optionally restricted to a namespace and minimum score
	SearchVector(ctx context.Context, vector []float32, topK int, namespace string, minScore float64) ([]VectorResult, error)

	// Stats reports aggregate index statistics
	Stats(ctx context.Context) (*IndexStats, error)

	// Close releases the underlying database
	Close() error
}
