// Package usecases contains the application core: document ingestion,
// retrieval, the retrieval decision policy, and the query agent. Usecases
// orchestrate entities through port interfaces only.
package usecases

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidegate/askdocs/internal/domain/chunker"
	"github.com/tidegate/askdocs/internal/domain/entities"
	"github.com/tidegate/askdocs/internal/domain/ports"
)

// IngestUseCase turns document files into indexed, embedded chunks.
type IngestUseCase struct {
	extractor ports.Extractor
	embedder  ports.Embedder
	index     ports.VectorIndex
	splitter  *chunker.Splitter
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(
	extractor ports.Extractor,
	embedder ports.Embedder,
	index ports.VectorIndex,
	splitter *chunker.Splitter,
) *IngestUseCase {
	return &IngestUseCase{
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		splitter:  splitter,
	}
}

// Ingest extracts, chunks, embeds and indexes one document, returning the
// number of chunks created. sourceName defaults to the base filename.
//
// Embedding is all-or-nothing: if any chunk fails to embed, nothing is added
// to the index, so the vector and metadata counts stay consistent.
func (uc *IngestUseCase) Ingest(ctx context.Context, path, sourceName string) (int, error) {
	if sourceName == "" {
		sourceName = filepath.Base(path)
	}

	text, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return 0, err
	}

	chunks := uc.splitter.Split(text)
	if len(chunks) == 0 {
		return 0, nil
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding %s: %w", sourceName, err)
	}

	records := make([]entities.Record, len(chunks))
	for i, content := range chunks {
		records[i] = entities.Record{
			Chunk: entities.Chunk{
				Content:     content,
				Source:      sourceName,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
			},
			Embedding: embeddings[i],
		}
	}

	if err := uc.index.Add(ctx, records); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", sourceName, err)
	}

	log.Printf("[INFO] Ingested %s: %d chunks", sourceName, len(chunks))
	return len(chunks), nil
}

// IngestDir ingests every supported file directly under dir, mapping each
// filename to its chunk count. One document's failure is logged and recorded
// as zero chunks; the batch always continues.
func (uc *IngestUseCase) IngestDir(ctx context.Context, dir string) (map[string]int, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	results := make(map[string]int)
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !uc.extractor.Supports(strings.ToLower(filepath.Ext(name))) {
			continue
		}

		count, err := uc.Ingest(ctx, filepath.Join(dir, name), name)
		if err != nil {
			log.Printf("[ERROR] Ingesting %s: %v", name, err)
			results[name] = 0
			continue
		}
		results[name] = count
	}
	return results, nil
}
