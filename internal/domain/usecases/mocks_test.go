package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/tidegate/askdocs/internal/domain/entities"
)

// mockExtractor implements ports.Extractor.
type mockExtractor struct {
	texts map[string]string // path -> content
	errs  map[string]error  // path -> extraction error
	err   error             // error for every path
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	return m.texts[path], nil
}

func (m *mockExtractor) Supports(ext string) bool {
	switch ext {
	case ".txt", ".md", ".markdown", ".pdf":
		return true
	}
	return false
}

// mockEmbedder implements ports.Embedder.
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// proportionEmbedder embeds text as the relative frequency of 'x' and 'y'
// characters, giving exact substrings of a region a vector near that
// region's chunks.
type proportionEmbedder struct{}

func (proportionEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	x := float32(strings.Count(text, "x"))
	y := float32(strings.Count(text, "y"))
	total := x + y
	if total == 0 {
		return []float32{0, 0}, nil
	}
	return []float32{x / total, y / total}, nil
}

func (p proportionEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = p.Embed(ctx, text)
	}
	return out, nil
}

// mockIndex implements ports.VectorIndex.
type mockIndex struct {
	records   []entities.Record
	addErr    error
	searchOut []entities.SearchResult
	searchErr error
}

func (m *mockIndex) Add(ctx context.Context, records []entities.Record) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockIndex) Search(ctx context.Context, embedding []float32, k int) ([]entities.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.searchOut) > k {
		return m.searchOut[:k], nil
	}
	return m.searchOut, nil
}

func (m *mockIndex) DeleteAll(ctx context.Context) error {
	m.records = nil
	return nil
}

func (m *mockIndex) Count() int { return len(m.records) }

// mockGenerator implements ports.Generator, recording the last call.
type mockGenerator struct {
	response   string
	err        error
	generateFn func(prompt, system string, history []entities.ChatMessage) (string, error)

	lastPrompt  string
	lastSystem  string
	lastHistory []entities.ChatMessage
	calls       int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt, system string, history []entities.ChatMessage) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastSystem = system
	m.lastHistory = history
	if m.generateFn != nil {
		return m.generateFn(prompt, system, history)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// mockSessions implements ports.SessionStore.
type mockSessions struct {
	histories map[string][]entities.ChatMessage
}

func newMockSessions() *mockSessions {
	return &mockSessions{histories: make(map[string][]entities.ChatMessage)}
}

func (m *mockSessions) GetOrCreate(id string) string {
	if id == "" {
		id = "generated-session"
	}
	if _, ok := m.histories[id]; !ok {
		m.histories[id] = nil
	}
	return id
}

func (m *mockSessions) Append(id, role, content string) {
	m.histories[id] = append(m.histories[id], entities.ChatMessage{
		Role: role, Content: content, Timestamp: time.Now(),
	})
}

func (m *mockSessions) History(id string) []entities.ChatMessage {
	return m.histories[id]
}

func (m *mockSessions) ExpireOlderThan(now time.Time, ttl time.Duration) int { return 0 }
