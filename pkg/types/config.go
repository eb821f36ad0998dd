package types

import "fmt"

// Default chunking parameters
const (
	DefaultTargetTokens  = 512
	DefaultMaxTokens     = 1000
	DefaultOverlapTokens = 50
	DefaultTokenizerID   = "cl100k_base"
)

// DefaultSeparators lists split candidates in priority order, from coarsest
// (paragraph break) to finest. The trailing empty string marks the
// character-level fallback: when reached, splitting drops to raw token
// windows instead of separator matching.
func DefaultSeparators() []string {
	return []string{
		"\n\n", // paragraphs
		"\n",   // lines
		". ",   // sentences
		"? ",   // questions
		"! ",   // exclamations
		", ",   // clauses
		" ",    // words
		"",     // token-boundary fallback
	}
}

// ChunkingConfig controls chunk sizing and boundary selection.
// It is immutable after Validate succeeds.
type ChunkingConfig struct {
	// TargetTokens is the desired chunk size in tokens
	TargetTokens int
	// MaxTokens is the ceiling a single chunk may reach; must be >= TargetTokens
	MaxTokens int
	// OverlapTokens is the shared context carried between adjacent chunks;
	// must be < TargetTokens so the fallback stride stays positive
	OverlapTokens int
	// TokenizerID selects the token counter (a tiktoken encoding name)
	TokenizerID string
	// Separators are tried strictly in order; nil means DefaultSeparators
	Separators []string
}

// DefaultChunkingConfig returns the standard configuration
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		TargetTokens:  DefaultTargetTokens,
		MaxTokens:     DefaultMaxTokens,
		OverlapTokens: DefaultOverlapTokens,
		TokenizerID:   DefaultTokenizerID,
		Separators:    DefaultSeparators(),
	}
}

// Validate checks the config invariants. It must be called once at
// construction; a config that fails validation must not be used.
func (c *ChunkingConfig) Validate() error {
	if c.TargetTokens <= 0 {
		return fmt.Errorf("%w: target_tokens must be positive, got %d", ErrInvalidConfig, c.TargetTokens)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidConfig, c.MaxTokens)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("%w: overlap_tokens must be non-negative, got %d", ErrInvalidConfig, c.OverlapTokens)
	}
	if c.OverlapTokens >= c.TargetTokens {
		return fmt.Errorf("%w: overlap_tokens (%d) must be less than target_tokens (%d)",
			ErrInvalidConfig, c.OverlapTokens, c.TargetTokens)
	}
	if c.MaxTokens < c.TargetTokens {
		return fmt.Errorf("%w: max_tokens (%d) must be greater than or equal to target_tokens (%d)",
			ErrInvalidConfig, c.MaxTokens, c.TargetTokens)
	}
	if c.TokenizerID == "" {
		return fmt.Errorf("%w: tokenizer_id is required", ErrInvalidConfig)
	}
	return nil
}

// SeparatorList returns the configured separators, falling back to the
// default cascade when none are set
func (c *ChunkingConfig) SeparatorList() []string {
	if len(c.Separators) == 0 {
		return DefaultSeparators()
	}
	return c.Separators
}
