package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vektano/docvector-mcp/internal/embedder"
	"github.com/vektano/docvector-mcp/internal/storage"
)

// DefaultTopK is the number of results returned when none is requested
const DefaultTopK = 10

// SearchRequest contains parameters for a semantic search
type SearchRequest struct {
	Query     string
	TopK      int
	Namespace string
	MinScore  float64
	UseCache  bool
	CacheTTL  time.Duration
}

// SearchResult is one ranked hit
type SearchResult struct {
	Rank       int // 1-based position in the result set
	ID         string
	DocumentID string
	Score      float64
	Content    string
	Metadata   map[string]any
}

// SearchResponse contains ranked results plus query metadata
type SearchResponse struct {
	Results  []SearchResult
	Duration time.Duration
	CacheHit bool
}

// cacheEntry is a cached response with expiration
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher embeds queries and ranks stored chunks by cosine similarity
type Searcher struct {
	storage  storage.Storage
	embedder embedder.Embedder
	cache    *lru.Cache[[32]byte, *cacheEntry]
}

// New creates a Searcher sharing the server's storage and embedder
func New(store storage.Storage, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// Only possible with a non-positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage:  store,
		embedder: emb,
		cache:    cache,
	}
}

// Search embeds the query and returns the topK most similar chunks
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}

	key := cacheKey(req)
	if req.UseCache {
		if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
			resp := *entry.response
			resp.CacheHit = true
			resp.Duration = time.Since(startTime)
			return &resp, nil
		}
	}

	queryEmb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.storage.SearchVector(ctx, queryEmb.Vector, req.TopK, req.Namespace, req.MinScore)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Rank:       i + 1,
			ID:         hit.Record.ID,
			DocumentID: hit.Record.DocumentID,
			Score:      hit.Score,
			Content:    hit.Record.Content,
			Metadata:   hit.Record.Metadata,
		}
	}

	response := &SearchResponse{
		Results:  results,
		Duration: time.Since(startTime),
	}

	if req.UseCache {
		ttl := req.CacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		s.cache.Add(key, &cacheEntry{response: response, expiresAt: time.Now().Add(ttl)})
	}

	return response, nil
}

// FormatResults renders ranked hits as the retrieval context block
// returned to MCP clients
func FormatResults(resp *SearchResponse) string {
	var b strings.Builder
	b.WriteString("Retrieved Contexts:\n\n")

	for _, result := range resp.Results {
		fmt.Fprintf(&b, "Result %d | Similarity: %.3f | Document ID: %s\n", result.Rank, result.Score, result.DocumentID)
		b.WriteString(strings.TrimSpace(result.Content))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", 10))
		b.WriteString("\n\n")
	}

	if len(resp.Results) == 0 {
		b.WriteString("No matching documents found.\n")
	}

	return b.String()
}

// cacheKey hashes the request parameters that affect results
func cacheKey(req SearchRequest) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s|%f", req.Query, req.TopK, req.Namespace, req.MinScore)))
}
