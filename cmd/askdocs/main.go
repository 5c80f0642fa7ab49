// Command askdocs runs the retrieval-augmented question-answering server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tidegate/askdocs/internal/adapters/embedding"
	"github.com/tidegate/askdocs/internal/adapters/extractor"
	"github.com/tidegate/askdocs/internal/adapters/filewatcher"
	"github.com/tidegate/askdocs/internal/adapters/llm"
	"github.com/tidegate/askdocs/internal/adapters/session"
	"github.com/tidegate/askdocs/internal/adapters/vectordb"
	"github.com/tidegate/askdocs/internal/config"
	"github.com/tidegate/askdocs/internal/domain/chunker"
	"github.com/tidegate/askdocs/internal/domain/ports"
	"github.com/tidegate/askdocs/internal/domain/usecases"
	httpserver "github.com/tidegate/askdocs/internal/infrastructure/http"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[ERROR] Loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	index, cleanup, err := buildIndex(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	embedder := embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel)
	generator := llm.NewOllamaGenerator(cfg.OllamaURL, cfg.LLMModel)
	sessions := session.NewStore(cfg.MaxHistory)
	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)

	ingestUC := usecases.NewIngestUseCase(extractor.New(), embedder, index, splitter)
	retrieveUC := usecases.NewRetrieveUseCase(embedder, index, cfg.TopK)
	decision := usecases.NewDecisionPolicy(generator)
	agent := usecases.NewAgent(decision, retrieveUC, generator, sessions, cfg.MaxHistory)

	go sweepSessions(ctx, sessions, cfg.SessionTTL)

	if cfg.WatchDocuments {
		if err := watchDocuments(ctx, ingestUC, cfg.DocumentsDir); err != nil {
			log.Printf("[WARN] Document watching disabled: %v", err)
		}
	}

	server := httpserver.NewServer(
		agent, sessions, index,
		cfg.HTTPAddr, cfg.AllowedOrigins, cfg.SessionTTL,
		cfg.LLMModel, cfg.VectorStore,
	)
	return server.Start(ctx)
}

func buildIndex(cfg *config.Config) (ports.VectorIndex, func(), error) {
	switch cfg.VectorStore {
	case config.StoreMemory:
		return vectordb.NewMemoryIndex(cfg.EmbeddingDim), func() {}, nil
	default:
		idx, err := vectordb.NewSQLiteIndex(cfg.DataDir, cfg.EmbeddingDim)
		if err != nil {
			return nil, nil, err
		}
		return idx, func() { idx.Close() }, nil
	}
}

// sweepSessions expires idle sessions periodically.
func sweepSessions(ctx context.Context, sessions *session.Store, ttl time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessions.ExpireOlderThan(now, ttl)
		}
	}
}

// watchDocuments re-ingests files created or modified in the documents
// directory.
func watchDocuments(ctx context.Context, ingest *usecases.IngestUseCase, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	watcher, err := filewatcher.New(nil)
	if err != nil {
		return err
	}

	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		watcher.Stop()
		return err
	}

	go func() {
		defer watcher.Stop()
		for event := range events {
			if event.Op == ports.FileDeleted {
				continue
			}
			if _, err := ingest.Ingest(ctx, event.Path, ""); err != nil {
				log.Printf("[ERROR] Auto-ingesting %s: %v", event.Path, err)
			}
		}
	}()

	log.Printf("[INFO] Watching %s for documents", dir)
	return nil
}
