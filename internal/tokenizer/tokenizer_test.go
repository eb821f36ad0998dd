package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCounter loads the default encoding, skipping when the BPE vocabulary
// cannot be fetched (offline CI without a tiktoken cache)
func newCounter(t *testing.T) *Tiktoken {
	t.Helper()
	counter, err := New("cl100k_base")
	if err != nil {
		t.Skipf("cl100k_base unavailable: %v", err)
	}
	return counter
}

func TestNew_DefaultEncoding(t *testing.T) {
	counter, err := New("")
	if err != nil {
		t.Skipf("default encoding unavailable: %v", err)
	}
	assert.Equal(t, "cl100k_base", counter.Encoding())
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New("no-such-encoding")
	assert.Error(t, err)
}

func TestCountTokens(t *testing.T) {
	counter := newCounter(t)

	assert.Equal(t, 0, counter.CountTokens(""))
	assert.Positive(t, counter.CountTokens("hello world"))

	// Counting must agree with encoding
	text := "The quick brown fox jumps over the lazy dog."
	assert.Equal(t, len(counter.Encode(text)), counter.CountTokens(text))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	counter := newCounter(t)

	texts := []string{
		"plain ascii text",
		"unicode: héllo wörld — 日本語",
		"line\nbreaks\n\nand\ttabs",
	}
	for _, text := range texts {
		assert.Equal(t, text, counter.Decode(counter.Encode(text)))
	}
}

func TestEncoderShared(t *testing.T) {
	a := newCounter(t)
	b, err := New("cl100k_base")
	require.NoError(t, err)

	// Both counters share the process-wide encoder instance
	assert.Same(t, a.tke, b.tke)
}
