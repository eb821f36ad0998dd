package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vektano/docvector-mcp/internal/chunker"
	"github.com/vektano/docvector-mcp/internal/embedder"
	"github.com/vektano/docvector-mcp/internal/storage"
	"github.com/vektano/docvector-mcp/pkg/types"
)

// MaxConcurrentBatches bounds how many embedding batches are in flight
const MaxConcurrentBatches = 4

// ProcessRequest describes one document to index
type ProcessRequest struct {
	DocumentID string
	Content    string
	Namespace  string
	Metadata   map[string]any
}

// ProcessResult summarizes a completed indexing run
type ProcessResult struct {
	DocumentID        string
	ChunksCreated     int
	TotalTokens       int
	AvgTokensPerChunk float64
	Dimension         int
	Duration          time.Duration
}

// Processor runs the chunk, embed, store pipeline for a document.
// Storage writes happen in a single transaction so a document is either
// fully indexed or absent.
type Processor struct {
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	storage  storage.Storage
}

// New creates a Processor from its three pipeline stages
func New(ch *chunker.Chunker, emb embedder.Embedder, store storage.Storage) *Processor {
	return &Processor{
		chunker:  ch,
		embedder: emb,
		storage:  store,
	}
}

// ProcessDocument chunks the content, embeds every chunk, and upserts the
// resulting records. Re-processing a document id overwrites its previous
// chunks with the same ids.
func (p *Processor) ProcessDocument(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	startTime := time.Now()

	chunks, err := p.chunker.ChunkDocument(req.DocumentID, req.Content, req.Metadata)
	if err != nil {
		return nil, err
	}

	embeddings, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed document %s: %w", req.DocumentID, err)
	}

	records := make([]*storage.Record, len(chunks))
	for i := range chunks {
		records[i] = &storage.Record{
			ID:          chunks[i].ID,
			DocumentID:  req.DocumentID,
			Namespace:   req.Namespace,
			ChunkNumber: chunks[i].ChunkNumber(),
			Content:     chunks[i].Content,
			Metadata:    chunks[i].Metadata,
			Vector:      embeddings[i].Vector,
			TokenCount:  chunks[i].TokenCount(),
		}
	}

	if err := p.storage.UpsertRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store document %s: %w", req.DocumentID, err)
	}

	stats := p.chunker.ComputeStats(chunks)
	log.Printf("indexed document %s: %d chunks, %d tokens, %v",
		req.DocumentID, stats.Chunks, stats.TotalTokens, time.Since(startTime).Round(time.Millisecond))

	return &ProcessResult{
		DocumentID:        req.DocumentID,
		ChunksCreated:     stats.Chunks,
		TotalTokens:       stats.TotalTokens,
		AvgTokensPerChunk: stats.AvgTokens,
		Dimension:         p.embedder.Dimension(),
		Duration:          time.Since(startTime),
	}, nil
}

// embedChunks embeds chunk contents in provider-sized batches running
// concurrently. Results land at their chunk's index so ordering is
// preserved regardless of batch completion order.
func (p *Processor) embedChunks(ctx context.Context, chunks []types.Chunk) ([]*embedder.Embedding, error) {
	embeddings := make([]*embedder.Embedding, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentBatches)

	for start := 0; start < len(chunks); start += embedder.DefaultBatchSize {
		end := start + embedder.DefaultBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Content
			}

			resp, err := p.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
			if err != nil {
				return err
			}
			if len(resp.Embeddings) != len(texts) {
				return fmt.Errorf("%w: got %d embeddings for %d texts",
					embedder.ErrProviderFailed, len(resp.Embeddings), len(texts))
			}

			for i, emb := range resp.Embeddings {
				embeddings[start+i] = emb
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// DeleteDocument removes every stored chunk of a document
func (p *Processor) DeleteDocument(ctx context.Context, documentID, namespace string) (int, error) {
	if documentID == "" {
		return 0, types.ErrMissingDocumentID
	}
	return p.storage.DeleteDocument(ctx, documentID, namespace)
}
