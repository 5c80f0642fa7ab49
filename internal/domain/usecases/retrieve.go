package usecases

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/tidegate/askdocs/internal/domain/entities"
	"github.com/tidegate/askdocs/internal/domain/ports"
)

// RetrieveUseCase embeds queries, searches the vector index, and shapes the
// results into LLM-ready context with source citations.
type RetrieveUseCase struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	topK     int
}

// NewRetrieveUseCase creates a RetrieveUseCase with the default result count.
func NewRetrieveUseCase(embedder ports.Embedder, index ports.VectorIndex, topK int) *RetrieveUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &RetrieveUseCase{embedder: embedder, index: index, topK: topK}
}

// Retrieve returns the most relevant chunks for the query. topK <= 0 uses
// the configured default.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string, topK int) ([]entities.SearchResult, error) {
	if topK <= 0 {
		topK = uc.topK
	}

	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := uc.index.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	log.Printf("[INFO] Retrieved %d context chunks for query", len(results))
	return results, nil
}

// FormatContext renders results as numbered source blocks for the prompt.
// Empty input yields an empty string.
func (uc *RetrieveUseCase) FormatContext(results []entities.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s (relevance: %.2f)]\n%s\n",
			i+1, r.Chunk.Source, r.Score, r.Chunk.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// Sources extracts the unique source names from results, sorted
// lexicographically.
func (uc *RetrieveUseCase) Sources(results []entities.SearchResult) []string {
	seen := make(map[string]struct{})
	for _, r := range results {
		if r.Chunk.Source != "" {
			seen[r.Chunk.Source] = struct{}{}
		}
	}

	sources := make([]string, 0, len(seen))
	for s := range seen {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}
