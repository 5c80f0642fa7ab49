// Package ports defines the interfaces between the domain core and its
// adapters. Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"
	"time"

	"github.com/tidegate/askdocs/internal/domain/entities"
)

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a language model given a prompt, a system
// instruction, and prior conversation turns.
type Generator interface {
	Generate(ctx context.Context, prompt, system string, history []entities.ChatMessage) (string, error)
}

// VectorIndex stores embeddings with parallel chunk metadata and answers
// k-nearest-neighbor queries. Implementations must keep the vector count and
// the metadata count equal at all times, including across restarts.
type VectorIndex interface {
	// Add appends records to the index and persists them before returning.
	Add(ctx context.Context, records []entities.Record) error

	// Search returns up to min(k, stored) nearest records by similarity,
	// best first. An empty index yields an empty result, not an error.
	Search(ctx context.Context, embedding []float32, k int) ([]entities.SearchResult, error)

	// DeleteAll resets the index to empty and persists the reset.
	DeleteAll(ctx context.Context) error

	// Count reports the number of stored records.
	Count() int
}

// Extractor turns a document file into plain text.
type Extractor interface {
	// Extract reads the file and returns its text content.
	Extract(ctx context.Context, path string) (string, error)

	// Supports reports whether the extractor handles the extension
	// (lower-case, including the leading dot).
	Supports(ext string) bool
}

// SessionStore owns per-conversation memory. Implementations serialize
// appends per session id; unrelated sessions do not contend.
type SessionStore interface {
	// GetOrCreate returns the id of an existing session, refreshed, or
	// creates a new one (with a fresh id when the given id is empty).
	GetOrCreate(id string) string

	// Append adds a turn to the session's history.
	Append(id, role, content string)

	// History returns the session's turns in order, oldest first.
	History(id string) []entities.ChatMessage

	// ExpireOlderThan removes sessions idle longer than ttl and reports
	// how many were removed.
	ExpireOlderThan(now time.Time, ttl time.Duration) int
}

// FileWatcher monitors a directory for document changes.
type FileWatcher interface {
	// Watch starts monitoring dir and emits events until ctx is done.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent is a file system change relevant to ingestion.
type FileEvent struct {
	Path string
	Op   FileOp
}

// FileOp is the kind of file change.
type FileOp int

const (
	FileCreated FileOp = iota
	FileModified
	FileDeleted
)
