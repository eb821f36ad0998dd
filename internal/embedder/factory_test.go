package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvJinaAPIKey, "")
}

func TestNewFromEnv_DefaultsToLocal(t *testing.T) {
	clearEnv(t)

	emb, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestNewFromEnv_ExplicitProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "openai")
	t.Setenv(EnvOpenAIAPIKey, "test-key")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderOpenAI, emb.Provider())
	assert.Equal(t, OpenAIDimension, emb.Dimension())
	assert.Equal(t, DefaultOpenAIModel, emb.Model())
}

func TestNewFromEnv_ExplicitProviderMissingKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "jina")

	_, err := NewFromEnv()
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestNewFromEnv_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "quantum")

	_, err := NewFromEnv()
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestNewFromEnv_AutoDetectOpenAI(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIAPIKey, "test-key")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderOpenAI, emb.Provider())
}

func TestNewFromEnv_AutoDetectJina(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJinaAPIKey, "test-key")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderJina, emb.Provider())
	assert.Equal(t, JinaDimension, emb.Dimension())
}

func TestDetectProvider(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvJinaAPIKey, "k")
	assert.Equal(t, ProviderJina, DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "k")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv(EnvProvider, "LOCAL")
	assert.Equal(t, ProviderLocal, DetectProvider())
}

func TestNew_ExplicitConfig(t *testing.T) {
	emb, err := New(Config{Provider: "local", CacheSize: 100})
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderLocal, emb.Provider())

	_, err = New(Config{Provider: "nope"})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}
