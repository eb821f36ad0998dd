// Package types defines the shared domain types for docvector: document
// chunks, chunking configuration, and the error taxonomy surfaced to
// callers. All types here are plain values with no external dependencies.
package types
