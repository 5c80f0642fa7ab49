package vectordb

import (
	"context"
	"fmt"
	"sync"

	"github.com/tidegate/askdocs/internal/domain/entities"
)

// MemoryIndex is a non-persistent vector index with the same search
// semantics as SQLiteIndex. Selected with vector_store: memory; also useful
// in tests.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	chunks  []entities.Chunk
}

// NewMemoryIndex creates an empty in-memory index for the given dimension.
func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{dim: dim}
}

// Add appends records after validating their dimension.
func (m *MemoryIndex) Add(ctx context.Context, records []entities.Record) error {
	for i, rec := range records {
		if len(rec.Embedding) != m.dim {
			return fmt.Errorf("%w: record %d has dimension %d, index expects %d",
				entities.ErrDimensionMismatch, i, len(rec.Embedding), m.dim)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.vectors = append(m.vectors, rec.Embedding)
		m.chunks = append(m.chunks, rec.Chunk)
	}
	return nil
}

// Search returns the min(k, stored) nearest records.
func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, k int) ([]entities.SearchResult, error) {
	if len(embedding) != m.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			entities.ErrDimensionMismatch, len(embedding), m.dim)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return bruteForceSearch(m.vectors, m.chunks, embedding, k), nil
}

// DeleteAll empties the index.
func (m *MemoryIndex) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = nil
	m.chunks = nil
	return nil
}

// Count reports the number of stored records.
func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}
