// Package embedder generates vector embeddings for document chunks.
//
// Three providers are available: OpenAI and Jina (both speak the same
// OpenAI-compatible /v1/embeddings wire format and share one HTTP client
// implementation) and a deterministic local provider for offline use.
// Provider selection is environment-driven via NewFromEnv.
//
// Embeddings are cached in-memory by SHA-256 content hash with LRU
// eviction, and remote calls retry with exponential backoff.
package embedder
