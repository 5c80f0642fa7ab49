package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidegate/askdocs/internal/domain/entities"
)

func searchResults() []entities.SearchResult {
	return []entities.SearchResult{
		{Chunk: entities.Chunk{Content: "first passage", Source: "handbook.pdf"}, Score: 0.91234},
		{Chunk: entities.Chunk{Content: "second passage", Source: "faq.md"}, Score: 0.5},
		{Chunk: entities.Chunk{Content: "third passage", Source: "handbook.pdf"}, Score: 0.25},
	}
}

func TestRetrieve_UsesConfiguredDefaultTopK(t *testing.T) {
	index := &mockIndex{searchOut: searchResults()}
	uc := NewRetrieveUseCase(&mockEmbedder{}, index, 2)

	results, err := uc.Retrieve(context.Background(), "a question", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieve_ExplicitTopK(t *testing.T) {
	index := &mockIndex{searchOut: searchResults()}
	uc := NewRetrieveUseCase(&mockEmbedder{}, index, 5)

	results, err := uc.Retrieve(context.Background(), "a question", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRetrieve_EmbedderError(t *testing.T) {
	embedder := &mockEmbedder{embedFn: func(string) ([]float32, error) {
		return nil, errors.New("embedder down")
	}}
	uc := NewRetrieveUseCase(embedder, &mockIndex{}, 5)

	_, err := uc.Retrieve(context.Background(), "a question", 0)
	assert.Error(t, err)
}

func TestFormatContext_NumbersAndScores(t *testing.T) {
	uc := NewRetrieveUseCase(&mockEmbedder{}, &mockIndex{}, 5)
	got := uc.FormatContext(searchResults())

	assert.Contains(t, got, "[Source 1: handbook.pdf (relevance: 0.91)]\nfirst passage\n")
	assert.Contains(t, got, "[Source 2: faq.md (relevance: 0.50)]\nsecond passage\n")
	assert.Contains(t, got, "[Source 3: handbook.pdf (relevance: 0.25)]\nthird passage\n")
	assert.Contains(t, got, "\n---\n")
}

func TestFormatContext_Empty(t *testing.T) {
	uc := NewRetrieveUseCase(&mockEmbedder{}, &mockIndex{}, 5)
	assert.Equal(t, "", uc.FormatContext(nil))
	assert.Equal(t, "", uc.FormatContext([]entities.SearchResult{}))
}

func TestSources_UniqueAndSorted(t *testing.T) {
	uc := NewRetrieveUseCase(&mockEmbedder{}, &mockIndex{}, 5)
	got := uc.Sources(searchResults())
	assert.Equal(t, []string{"faq.md", "handbook.pdf"}, got)
}

func TestSources_SkipsEmptyNames(t *testing.T) {
	uc := NewRetrieveUseCase(&mockEmbedder{}, &mockIndex{}, 5)
	got := uc.Sources([]entities.SearchResult{
		{Chunk: entities.Chunk{Source: ""}},
		{Chunk: entities.Chunk{Source: "a.txt"}},
	})
	assert.Equal(t, []string{"a.txt"}, got)
}
