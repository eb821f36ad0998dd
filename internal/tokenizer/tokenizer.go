package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter is the tokenization capability consumed by the chunker.
// Implementations must be deterministic, side-effect-free, and safe for
// concurrent use.
type TokenCounter interface {
	// CountTokens returns the exact token count for text
	CountTokens(text string) int

	// Encode converts text to its token sequence
	Encode(text string) []int

	// Decode converts a token sequence back to text
	Decode(tokens []int) string
}

var (
	encoderMu sync.Mutex
	encoders  = make(map[string]*tiktoken.Tiktoken)
)

// getEncoder returns a process-wide cached encoder for the named encoding.
// tiktoken encoders are expensive to build (BPE rank tables), so one
// instance per encoding is shared by all counters.
func getEncoder(encoding string) (*tiktoken.Tiktoken, error) {
	encoderMu.Lock()
	defer encoderMu.Unlock()

	if tke, ok := encoders[encoding]; ok {
		return tke, nil
	}

	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	encoders[encoding] = tke
	return tke, nil
}

// Tiktoken implements TokenCounter over a BPE encoding from tiktoken-go
type Tiktoken struct {
	encoding string
	tke      *tiktoken.Tiktoken
}

// New creates a token counter for the given tiktoken encoding name
// (e.g. "cl100k_base"). Unknown encodings fail here, not at count time.
func New(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	tke, err := getEncoder(encoding)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{encoding: encoding, tke: tke}, nil
}

// CountTokens returns the exact BPE token count for text
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.tke.Encode(text, nil, nil))
}

// Encode converts text into BPE token IDs
func (t *Tiktoken) Encode(text string) []int {
	return t.tke.Encode(text, nil, nil)
}

// Decode converts BPE token IDs back into text
func (t *Tiktoken) Decode(tokens []int) string {
	return t.tke.Decode(tokens)
}

// Encoding returns the encoding name this counter was built with
func (t *Tiktoken) Encoding() string {
	return t.encoding
}
