package chunker

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/vektano/docvector-mcp/internal/tokenizer"
	"github.com/vektano/docvector-mcp/pkg/types"
)

// ChunkTypeSmart labels chunks produced by the recursive splitter
const ChunkTypeSmart = "smart"

// Chunker splits document text into token-bounded chunks at semantic
// boundaries. One configured instance is safe to share across concurrent
// callers: the config is immutable and the token counter is stateless.
type Chunker struct {
	config  types.ChunkingConfig
	counter tokenizer.TokenCounter
}

// New creates a Chunker from a validated config and an injected token
// counter. Config violations fail here, never during splitting.
func New(config types.ChunkingConfig, counter tokenizer.TokenCounter) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if counter == nil {
		return nil, fmt.Errorf("%w: token counter is required", types.ErrInvalidConfig)
	}
	return &Chunker{config: config, counter: counter}, nil
}

// NewWithTiktoken creates a Chunker whose token counter is the tiktoken
// encoding named by config.TokenizerID
func NewWithTiktoken(config types.ChunkingConfig) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	counter, err := tokenizer.New(config.TokenizerID)
	if err != nil {
		return nil, err
	}
	return &Chunker{config: config, counter: counter}, nil
}

// Config returns the chunker's configuration
func (c *Chunker) Config() types.ChunkingConfig {
	return c.config
}

// Stats summarizes a chunking run. Informational only.
type Stats struct {
	Chunks      int
	TotalTokens int
	AvgTokens   float64
}

// ChunkDocument splits content into chunks with overlap and wraps each
// span with positional metadata. The operation is all-or-nothing: on any
// failure no partial chunk set is returned.
func (c *Chunker) ChunkDocument(documentID, content string, metadata map[string]any) (chunks []types.Chunk, err error) {
	if documentID == "" {
		return nil, types.ErrMissingDocumentID
	}
	if strings.TrimSpace(content) == "" {
		return nil, types.ErrEmptyContent
	}

	// A token counter panic surfaces as a ChunkingError for the document
	// instead of taking down the caller.
	defer func() {
		if r := recover(); r != nil {
			chunks = nil
			err = &types.ChunkingError{DocumentID: documentID, Err: fmt.Errorf("%v", r)}
		}
	}()

	pieces := c.splitWithOverlap(content, c.config.SeparatorList(), c.config.TargetTokens, c.config.OverlapTokens)
	if len(pieces) == 0 {
		return nil, &types.ChunkingError{DocumentID: documentID, Err: fmt.Errorf("no chunks produced")}
	}

	chunks = make([]types.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, c.assembleChunk(documentID, text, i+1, len(pieces), metadata))
	}

	stats := c.ComputeStats(chunks)
	log.Printf("split document %s into %d chunks (avg %.0f tokens)", documentID, stats.Chunks, stats.AvgTokens)

	return chunks, nil
}

// ComputeStats aggregates token totals across a produced chunk sequence
func (c *Chunker) ComputeStats(chunks []types.Chunk) Stats {
	stats := Stats{Chunks: len(chunks)}
	for i := range chunks {
		stats.TotalTokens += chunks[i].TokenCount()
	}
	if stats.Chunks > 0 {
		stats.AvgTokens = float64(stats.TotalTokens) / float64(stats.Chunks)
	}
	return stats
}

// splitWithOverlap is the recursive separator cascade. It tries each
// separator in priority order and, for the first one that divides the
// text, packs the resulting pieces into token-bounded chunks. Exactly one
// separator is used per pass; a piece that alone exceeds the target is
// placed verbatim rather than re-split.
func (c *Chunker) splitWithOverlap(text string, separators []string, targetTokens, overlapTokens int) []string {
	// Base case: text already fits
	if c.counter.CountTokens(text) <= targetTokens {
		return []string{text}
	}

	for _, sep := range separators {
		if sep == "" {
			// Character-level marker: no semantic separator worked,
			// drop to raw token windows
			break
		}

		splits := strings.Split(text, sep)
		if len(splits) == 1 {
			// Separator not present, try the next finer one
			continue
		}

		var chunks []string
		var current []string
		currentTokens := 0

		for _, piece := range splits {
			pieceTokens := c.counter.CountTokens(piece)

			if currentTokens+pieceTokens > targetTokens && len(current) > 0 {
				chunks = append(chunks, strings.Join(current, sep))

				// Seed the next chunk with the trailing pieces of the one
				// just closed, up to the overlap budget
				current = c.overlapTail(current, overlapTokens)
				currentTokens = c.counter.CountTokens(strings.Join(current, sep))
			}

			current = append(current, piece)
			currentTokens += pieceTokens
		}

		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))
		}

		if len(chunks) > 0 {
			return chunks
		}
	}

	return c.splitByTokens(text, targetTokens, overlapTokens)
}

// overlapTail walks backward through the pieces of a closed chunk and
// returns, in original order, the trailing subsequence whose combined
// token count does not exceed overlapTokens
func (c *Chunker) overlapTail(pieces []string, overlapTokens int) []string {
	remaining := overlapTokens
	start := len(pieces)
	for i := len(pieces) - 1; i >= 0; i-- {
		t := c.counter.CountTokens(pieces[i])
		if remaining-t < 0 {
			break
		}
		remaining -= t
		start = i
	}
	if start == len(pieces) {
		return nil
	}
	tail := make([]string, len(pieces)-start)
	copy(tail, pieces[start:])
	return tail
}

// splitByTokens is the last-resort splitter: fixed-size overlapping token
// windows. The stride target-overlap is guaranteed positive by the config
// invariant overlap < target.
func (c *Chunker) splitByTokens(text string, targetTokens, overlapTokens int) []string {
	tokens := c.counter.Encode(text)
	stride := targetTokens - overlapTokens

	chunks := make([]string, 0, len(tokens)/stride+1)
	for i := 0; i < len(tokens); i += stride {
		end := i + targetTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.counter.Decode(tokens[i:end]))
	}
	return chunks
}

// assembleChunk trims the span, merges metadata (reserved keys win over
// caller keys), and builds the immutable Chunk value
func (c *Chunker) assembleChunk(documentID, content string, number, total int, base map[string]any) types.Chunk {
	trimmed := strings.TrimSpace(content)
	tokenCount := c.counter.CountTokens(trimmed)

	metadata := make(map[string]any, len(base)+6)
	for k, v := range base {
		metadata[k] = v
	}
	metadata[types.MetaDocumentID] = documentID
	metadata[types.MetaChunkNumber] = number
	metadata[types.MetaTotalChunks] = total
	metadata[types.MetaTokenCount] = tokenCount
	metadata[types.MetaCharCount] = utf8.RuneCountInString(trimmed)
	metadata[types.MetaChunkType] = ChunkTypeSmart

	return types.Chunk{
		ID:       types.ChunkID(documentID, number),
		Content:  trimmed,
		Metadata: metadata,
	}
}
