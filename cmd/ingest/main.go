// Command ingest indexes every supported document in a directory and prints
// per-file chunk counts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/tidegate/askdocs/internal/adapters/embedding"
	"github.com/tidegate/askdocs/internal/adapters/extractor"
	"github.com/tidegate/askdocs/internal/adapters/vectordb"
	"github.com/tidegate/askdocs/internal/config"
	"github.com/tidegate/askdocs/internal/domain/chunker"
	"github.com/tidegate/askdocs/internal/domain/usecases"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	dir := flag.String("dir", "", "documents directory (defaults to the configured one)")
	reset := flag.Bool("reset", false, "clear the index before ingesting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[ERROR] Loading configuration: %v", err)
	}
	if *dir == "" {
		*dir = cfg.DocumentsDir
	}

	index, err := openIndex(cfg)
	if err != nil {
		log.Fatalf("[ERROR] Opening vector index: %v", err)
	}
	defer index.Close()

	ctx := context.Background()

	if *reset {
		if err := index.DeleteAll(ctx); err != nil {
			log.Fatalf("[ERROR] Clearing index: %v", err)
		}
		fmt.Println("Cleared existing index")
	}

	embedder := embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel)
	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	ingest := usecases.NewIngestUseCase(extractor.New(), embedder, index, splitter)

	results, err := ingest.IngestDir(ctx, *dir)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if len(results) == 0 {
		fmt.Printf("No supported documents found in %s\n", *dir)
		os.Exit(0)
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		fmt.Printf("  %-40s %d chunks\n", name, results[name])
		total += results[name]
	}
	fmt.Printf("Ingested %d documents, %d chunks, %d records in index\n",
		len(results), total, index.Count())
}

// openIndex opens the configured vector store. Batch ingestion only makes
// sense against a persistent index, so anything but sqlite is rejected.
func openIndex(cfg *config.Config) (*vectordb.SQLiteIndex, error) {
	if cfg.VectorStore != config.StoreSQLite {
		return nil, fmt.Errorf("vector_store is %q; batch ingestion requires %q",
			cfg.VectorStore, config.StoreSQLite)
	}
	return vectordb.NewSQLiteIndex(cfg.DataDir, cfg.EmbeddingDim)
}
