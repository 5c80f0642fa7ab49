// Package vectordb provides vector index adapters. The SQLite-backed index
// persists vectors and chunk metadata as two parallel tables in one database
// file; a single transaction covers both, so a crash can never leave one
// shard written without the other.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/tidegate/askdocs/internal/domain/entities"
)

// SQLiteIndex is a persistent flat vector index with exact nearest-neighbor
// search over squared L2 distance. Rows are kept in insertion order; the pos
// column is the join key between the embeddings and chunks tables, and both
// tables must always hold the same number of rows.
type SQLiteIndex struct {
	mu      sync.RWMutex
	db      *sql.DB
	dim     int
	vectors [][]float32
	chunks  []entities.Chunk
}

// NewSQLiteIndex opens (or creates) the index under dataDir. Persisted state
// that fails the integrity check is discarded with a warning rather than
// failing startup.
func NewSQLiteIndex(dataDir string, dim int) (*SQLiteIndex, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	idx := &SQLiteIndex{db: db, dim: dim}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if err := idx.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading index: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		pos    INTEGER PRIMARY KEY,
		vector BLOB NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chunks (
		pos          INTEGER PRIMARY KEY,
		content      TEXT NOT NULL,
		source       TEXT NOT NULL,
		chunk_index  INTEGER NOT NULL,
		total_chunks INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// load reads both tables into memory, verifying the join invariant first.
func (s *SQLiteIndex) load() error {
	var nVec, nMeta int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&nVec); err != nil {
		return err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&nMeta); err != nil {
		return err
	}
	if nVec != nMeta {
		log.Printf("[WARN] %v: %d vectors vs %d metadata rows, resetting index",
			entities.ErrIndexCorrupt, nVec, nMeta)
		return s.reset()
	}
	if nVec == 0 {
		return nil
	}

	rows, err := s.db.Query(`
		SELECT e.vector, c.content, c.source, c.chunk_index, c.total_chunks
		FROM embeddings e JOIN chunks c ON c.pos = e.pos
		ORDER BY e.pos`)
	if err != nil {
		return err
	}
	defer rows.Close()

	vectors := make([][]float32, 0, nVec)
	chunks := make([]entities.Chunk, 0, nVec)
	for rows.Next() {
		var blob []byte
		var chunk entities.Chunk
		if err := rows.Scan(&blob, &chunk.Content, &chunk.Source, &chunk.ChunkIndex, &chunk.TotalChunks); err != nil {
			return err
		}
		var vec []float32
		if err := json.Unmarshal(blob, &vec); err != nil || len(vec) != s.dim {
			log.Printf("[WARN] %v: unreadable vector at row %d, resetting index",
				entities.ErrIndexCorrupt, len(vectors))
			return s.reset()
		}
		vectors = append(vectors, vec)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.vectors = vectors
	s.chunks = chunks
	log.Printf("[INFO] Loaded vector index with %d records", len(vectors))
	return nil
}

func (s *SQLiteIndex) reset() error {
	if _, err := s.db.Exec(`DELETE FROM embeddings; DELETE FROM chunks;`); err != nil {
		return err
	}
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Add appends records, persisting vectors and metadata in one transaction.
// The in-memory view is only updated after a successful commit.
func (s *SQLiteIndex) Add(ctx context.Context, records []entities.Record) error {
	if len(records) == 0 {
		return nil
	}
	for i, rec := range records {
		if len(rec.Embedding) != s.dim {
			return fmt.Errorf("%w: record %d has dimension %d, index expects %d",
				entities.ErrDimensionMismatch, i, len(rec.Embedding), s.dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistAdd(ctx, records); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	for _, rec := range records {
		s.vectors = append(s.vectors, rec.Embedding)
		s.chunks = append(s.chunks, rec.Chunk)
	}
	return nil
}

func (s *SQLiteIndex) persistAdd(ctx context.Context, records []entities.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insVec, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (pos, vector) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer insVec.Close()

	insChunk, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (pos, content, source, chunk_index, total_chunks)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insChunk.Close()

	pos := len(s.vectors)
	for _, rec := range records {
		blob, err := json.Marshal(rec.Embedding)
		if err != nil {
			return err
		}
		if _, err := insVec.ExecContext(ctx, pos, blob); err != nil {
			return err
		}
		if _, err := insChunk.ExecContext(ctx, pos,
			rec.Chunk.Content, rec.Chunk.Source, rec.Chunk.ChunkIndex, rec.Chunk.TotalChunks); err != nil {
			return err
		}
		pos++
	}
	return tx.Commit()
}

// Search returns the min(k, stored) nearest records by squared L2 distance,
// scored as 1/(1+distance). Concurrent searches share a read lock.
func (s *SQLiteIndex) Search(ctx context.Context, embedding []float32, k int) ([]entities.SearchResult, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			entities.ErrDimensionMismatch, len(embedding), s.dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return bruteForceSearch(s.vectors, s.chunks, embedding, k), nil
}

// DeleteAll empties the index and persists the reset.
func (s *SQLiteIndex) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reset(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	return nil
}

// Count reports the number of stored records.
func (s *SQLiteIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Close closes the underlying database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// bruteForceSearch scans all vectors, exact nearest-neighbor. Shared by the
// SQLite and in-memory indexes.
func bruteForceSearch(vectors [][]float32, chunks []entities.Chunk, query []float32, k int) []entities.SearchResult {
	if len(vectors) == 0 || k <= 0 {
		return []entities.SearchResult{}
	}

	results := make([]entities.SearchResult, len(vectors))
	for i, vec := range vectors {
		results[i] = entities.SearchResult{
			Chunk: chunks[i],
			Score: 1 / (1 + sqL2(query, vec)),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// sqL2 is the squared Euclidean distance between equal-length vectors.
func sqL2(a, b []float32) float64 {
	var d float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		d += diff * diff
	}
	return d
}
