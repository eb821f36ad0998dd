package searcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vektano/docvector-mcp/internal/embedder"
	"github.com/vektano/docvector-mcp/internal/storage"
)

// mockEmbedder returns a fixed vector for any text
type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEmbedder) GenerateEmbedding(_ context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &embedder.Embedding{
		Vector:    m.vector,
		Dimension: len(m.vector),
		Provider:  "mock",
		Model:     "mock",
		Hash:      embedder.ComputeHash(req.Text),
	}, nil
}

func (m *mockEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	embeddings := make([]*embedder.Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := m.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return &embedder.BatchEmbeddingResponse{Embeddings: embeddings, Provider: "mock", Model: "mock"}, nil
}

func (m *mockEmbedder) Dimension() int   { return len(m.vector) }
func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "mock" }
func (m *mockEmbedder) Close() error     { return nil }

// mockStorage serves canned search hits and records the query it saw
type mockStorage struct {
	storage.Storage

	hits      []storage.VectorResult
	err       error
	lastTopK  int
	lastNS    string
	lastMin   float64
	callCount int
}

func (m *mockStorage) SearchVector(_ context.Context, _ []float32, topK int, namespace string, minScore float64) ([]storage.VectorResult, error) {
	m.callCount++
	m.lastTopK = topK
	m.lastNS = namespace
	m.lastMin = minScore
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func hit(id, documentID string, score float64) storage.VectorResult {
	return storage.VectorResult{
		Record: &storage.Record{
			ID:         id,
			DocumentID: documentID,
			Content:    "content of " + id,
			Metadata:   map[string]any{"document_id": documentID},
		},
		Score: score,
	}
}

func TestSearch_RanksResults(t *testing.T) {
	store := &mockStorage{hits: []storage.VectorResult{
		hit("doc-1#chunk1", "doc-1", 0.95),
		hit("doc-2#chunk1", "doc-2", 0.80),
	}}
	s := New(store, &mockEmbedder{vector: []float32{1, 0}})

	resp, err := s.Search(context.Background(), SearchRequest{Query: "what is chunking?"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, 1, resp.Results[0].Rank)
	assert.Equal(t, "doc-1#chunk1", resp.Results[0].ID)
	assert.Equal(t, "doc-1", resp.Results[0].DocumentID)
	assert.InDelta(t, 0.95, resp.Results[0].Score, 1e-9)
	assert.Equal(t, 2, resp.Results[1].Rank)
}

func TestSearch_DefaultTopK(t *testing.T) {
	store := &mockStorage{}
	s := New(store, &mockEmbedder{vector: []float32{1}})

	_, err := s.Search(context.Background(), SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, store.lastTopK)
}

func TestSearch_PassesFilters(t *testing.T) {
	store := &mockStorage{}
	s := New(store, &mockEmbedder{vector: []float32{1}})

	_, err := s.Search(context.Background(), SearchRequest{
		Query:     "q",
		TopK:      3,
		Namespace: "notes",
		MinScore:  0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.lastTopK)
	assert.Equal(t, "notes", store.lastNS)
	assert.InDelta(t, 0.7, store.lastMin, 1e-9)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := New(&mockStorage{}, &mockEmbedder{vector: []float32{1}})

	_, err := s.Search(context.Background(), SearchRequest{Query: "   "})
	assert.Error(t, err)
}

func TestSearch_EmbedderError(t *testing.T) {
	embErr := errors.New("provider down")
	s := New(&mockStorage{}, &mockEmbedder{err: embErr})

	_, err := s.Search(context.Background(), SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, embErr)
}

func TestSearch_StorageError(t *testing.T) {
	storeErr := errors.New("db locked")
	s := New(&mockStorage{err: storeErr}, &mockEmbedder{vector: []float32{1}})

	_, err := s.Search(context.Background(), SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, storeErr)
}

func TestSearch_CacheHit(t *testing.T) {
	store := &mockStorage{hits: []storage.VectorResult{hit("doc-1#chunk1", "doc-1", 0.9)}}
	emb := &mockEmbedder{vector: []float32{1}}
	s := New(store, emb)

	req := SearchRequest{Query: "q", UseCache: true, CacheTTL: time.Minute}

	first, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, 1, store.callCount)
	assert.Equal(t, 1, emb.calls)
}

func TestSearch_CacheKeyedByParams(t *testing.T) {
	store := &mockStorage{}
	s := New(store, &mockEmbedder{vector: []float32{1}})

	_, err := s.Search(context.Background(), SearchRequest{Query: "q", TopK: 5, UseCache: true})
	require.NoError(t, err)
	_, err = s.Search(context.Background(), SearchRequest{Query: "q", TopK: 7, UseCache: true})
	require.NoError(t, err)

	assert.Equal(t, 2, store.callCount)
}

func TestFormatResults(t *testing.T) {
	resp := &SearchResponse{Results: []SearchResult{
		{Rank: 1, ID: "doc-1#chunk1", DocumentID: "doc-1", Score: 0.954, Content: "first chunk"},
		{Rank: 2, ID: "doc-2#chunk1", DocumentID: "doc-2", Score: 0.812, Content: "second chunk"},
	}}

	out := FormatResults(resp)

	assert.True(t, strings.HasPrefix(out, "Retrieved Contexts:\n\n"))
	assert.Contains(t, out, "Result 1 | Similarity: 0.954 | Document ID: doc-1")
	assert.Contains(t, out, "first chunk")
	assert.Contains(t, out, "Result 2 | Similarity: 0.812 | Document ID: doc-2")
	assert.Contains(t, out, strings.Repeat("-", 10))
}

func TestFormatResults_Empty(t *testing.T) {
	out := FormatResults(&SearchResponse{})
	assert.Contains(t, out, "No matching documents found.")
}
