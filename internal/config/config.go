// Package config loads application settings. Precedence, lowest to highest:
// built-in defaults, an optional YAML config file, a .env file, then process
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Vector store kinds selectable at startup.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds all settings for the service.
type Config struct {
	// Server
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Model backend (Ollama)
	OllamaURL    string `yaml:"ollama_url"`
	LLMModel     string `yaml:"llm_model"`
	EmbedModel   string `yaml:"embed_model"`
	EmbeddingDim int    `yaml:"embedding_dim"`

	// Vector store
	VectorStore string `yaml:"vector_store"` // sqlite or memory
	DataDir     string `yaml:"data_dir"`

	// Document processing
	DocumentsDir   string `yaml:"documents_dir"`
	WatchDocuments bool   `yaml:"watch_documents"`
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap"`
	TopK           int    `yaml:"top_k"`

	// Sessions
	SessionTTL time.Duration `yaml:"session_ttl"`
	MaxHistory int           `yaml:"max_history"` // conversation turns kept per session
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		HTTPAddr:       ":8000",
		AllowedOrigins: []string{"http://localhost:8000", "http://127.0.0.1:8000"},
		OllamaURL:      "http://localhost:11434",
		LLMModel:       "llama3.2",
		EmbedModel:     "nomic-embed-text",
		EmbeddingDim:   768,
		VectorStore:    StoreSQLite,
		DataDir:        "./data",
		DocumentsDir:   "./documents",
		WatchDocuments: true,
		ChunkSize:      1000,
		ChunkOverlap:   200,
		TopK:           5,
		SessionTTL:     time.Hour,
		MaxHistory:     10,
	}
}

// Load builds the configuration. path names an optional YAML file; a missing
// file is not an error. A .env file in the working directory is applied
// before reading the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Defaults plus environment only.
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.OllamaURL, "OLLAMA_URL")
	setString(&c.LLMModel, "LLM_MODEL")
	setString(&c.EmbedModel, "EMBED_MODEL")
	setInt(&c.EmbeddingDim, "EMBEDDING_DIM")
	setString(&c.VectorStore, "VECTOR_STORE")
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.DocumentsDir, "DOCUMENTS_DIR")
	setBool(&c.WatchDocuments, "WATCH_DOCUMENTS")
	setInt(&c.ChunkSize, "CHUNK_SIZE")
	setInt(&c.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&c.TopK, "TOP_K")
	setInt(&c.MaxHistory, "MAX_HISTORY")

	if v := os.Getenv("SESSION_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.SessionTTL = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		c.AllowedOrigins = c.AllowedOrigins[:0]
		for _, o := range origins {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
}

// Validate checks settings that would otherwise fail deep inside the system.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	if c.VectorStore != StoreSQLite && c.VectorStore != StoreMemory {
		return fmt.Errorf("unknown vector_store %q", c.VectorStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
