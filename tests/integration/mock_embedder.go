package integration

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/vektano/docvector-mcp/internal/embedder"
)

// MockEmbedder generates deterministic unit vectors from a text hash so
// pipeline tests never touch a real provider
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// GenerateEmbedding generates a deterministic fake embedding
func (m *MockEmbedder) GenerateEmbedding(_ context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	if req.Text == "" {
		return nil, embedder.ErrEmptyText
	}

	hash := sha256.Sum256([]byte(req.Text))
	vector := make([]float32, m.dimension)
	for i := 0; i < m.dimension; i++ {
		idx := (i * 4) % 28
		val := binary.BigEndian.Uint32(hash[idx : idx+4])
		vector[i] = (float32(val)/float32(math.MaxUint32))*2 - 1
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := float32(1 / math.Sqrt(sum))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return &embedder.Embedding{
		Vector:    vector,
		Dimension: m.dimension,
		Provider:  "mock",
		Model:     "mock-v1",
		Hash:      embedder.ComputeHash(req.Text),
	}, nil
}

// GenerateBatch generates embeddings for multiple texts, in order
func (m *MockEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	if err := embedder.ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings := make([]*embedder.Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := m.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}

	return &embedder.BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   "mock",
		Model:      "mock-v1",
	}, nil
}

// Dimension returns the embedding dimension
func (m *MockEmbedder) Dimension() int { return m.dimension }

// Provider returns the provider name
func (m *MockEmbedder) Provider() string { return "mock" }

// Model returns the model name
func (m *MockEmbedder) Model() string { return "mock-v1" }

// Close releases resources (no-op for mock)
func (m *MockEmbedder) Close() error { return nil }
