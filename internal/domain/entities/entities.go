// Package entities contains the core domain objects of the retrieval system.
// Pure data types with no knowledge of storage, transport, or model backends.
package entities

import "time"

// Chunk is a bounded span of a source document's text, the unit of retrieval.
type Chunk struct {
	Content     string
	Source      string // originating document name
	ChunkIndex  int    // position within the source document
	TotalChunks int
}

// Record pairs a chunk with its embedding for storage in the vector index.
// Records live in the index in insertion order; the position is the join key
// between the vector data and the chunk metadata.
type Record struct {
	Chunk     Chunk
	Embedding []float32
}

// SearchResult is a chunk returned from a nearest-neighbor search together
// with its similarity score (higher is more relevant). Produced at query
// time only, never persisted.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// ChatMessage is a single role-tagged conversation turn.
type ChatMessage struct {
	Role      string // "user" or "assistant"
	Content   string
	Timestamp time.Time
}

// QueryResponse is the agent's answer to one query.
type QueryResponse struct {
	Answer    string
	Sources   []string
	SessionID string
	UsedRAG   bool

	// FailureDetail carries the underlying error when the agent fell back to
	// its apology answer. For logs only; never shown to the end user.
	FailureDetail string
}
