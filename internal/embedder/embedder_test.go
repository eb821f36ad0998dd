package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "hello world"})
	require.NoError(t, err)
	second, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "hello world"})
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, LocalDimension, first.Dimension)
	assert.Len(t, first.Vector, LocalDimension)
}

func TestLocalProvider_DistinctTexts(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "first"})
	require.NoError(t, err)
	b, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "second"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Vector, b.Vector)
}

func TestLocalProvider_UnitLength(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "normalize me"})
	require.NoError(t, err)

	var sum float64
	for _, v := range emb.Vector {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 0.001)
}

func TestLocalProvider_EmptyText(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProvider_Batch(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	resp, err := provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{
		Texts: []string{"one", "two", "three"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)
	assert.Equal(t, ProviderLocal, resp.Provider)

	// Batch order matches input order
	single, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "two"})
	require.NoError(t, err)
	assert.Equal(t, single.Vector, resp.Embeddings[1].Vector)
}

func TestValidateBatchRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"ok", ""}}), ErrInvalidInput)
	assert.NoError(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"ok"}}))
}

func TestCache_GetReturnsCopy(t *testing.T) {
	cache := NewCache(10)
	hash := ComputeHash("text")
	cache.Set(hash, &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3})

	got, ok := cache.Get(hash)
	require.True(t, ok)
	got.Vector[0] = 99

	again, ok := cache.Get(hash)
	require.True(t, ok)
	assert.Equal(t, float32(1), again.Vector[0])
}

func TestCache_Eviction(t *testing.T) {
	cache := NewCache(2)
	cache.Set("a", &Embedding{})
	cache.Set("b", &Embedding{})
	cache.Set("c", &Embedding{})

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestComputeHash(t *testing.T) {
	assert.Equal(t, ComputeHash("same"), ComputeHash("same"))
	assert.NotEqual(t, ComputeHash("same"), ComputeHash("different"))
	assert.Len(t, ComputeHash("x"), 64)
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	assert.Equal(t, v, NormalizeVector(v))
}
