// Package chunker splits free-form document text into token-bounded chunks
// for embedding and vector search.
//
// The splitter tries a cascade of separators in priority order (paragraph
// breaks before lines, before sentences, before words) and uses the first
// separator that divides the text. Pieces are packed greedily into chunks
// up to the configured target token count, and each new chunk is seeded
// with the trailing pieces of the previous one so adjacent chunks share
// context.
//
// # Basic Usage
//
//	c, err := chunker.NewWithTiktoken(types.DefaultChunkingConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chunks, err := c.ChunkDocument("doc-1", content, map[string]any{"source": "notes"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, chunk := range chunks {
//	    fmt.Printf("%s: %d tokens\n", chunk.ID, chunk.TokenCount())
//	}
//
// # Fallback
//
// When no separator divides the text (one long unbroken run), the splitter
// falls back to fixed-size token windows advancing by target-overlap
// tokens per step.
//
// Token counting is an injected capability (tokenizer.TokenCounter); the
// chunker itself holds no mutable state and is safe for concurrent use.
package chunker
