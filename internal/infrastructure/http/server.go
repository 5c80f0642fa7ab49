// Package http provides the JSON API server: a thin transport wrapper over
// the query agent.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/tidegate/askdocs/internal/domain/entities"
	"github.com/tidegate/askdocs/internal/domain/ports"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// QueryProcessor answers user queries; implemented by usecases.Agent.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, query, sessionID string) *entities.QueryResponse
}

// Server is the HTTP server for the question-answering API.
type Server struct {
	agent       QueryProcessor
	sessions    ports.SessionStore
	index       ports.VectorIndex
	addr        string
	origins     []string
	sessionTTL  time.Duration
	llmModel    string
	vectorStore string
}

// NewServer creates the API server.
func NewServer(
	agent QueryProcessor,
	sessions ports.SessionStore,
	index ports.VectorIndex,
	addr string,
	origins []string,
	sessionTTL time.Duration,
	llmModel, vectorStore string,
) *Server {
	return &Server{
		agent:       agent,
		sessions:    sessions,
		index:       index,
		addr:        addr,
		origins:     origins,
		sessionTTL:  sessionTTL,
		llmModel:    llmModel,
		vectorStore: vectorStore,
	}
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/cleanup-sessions", s.handleCleanupSessions)
	return corsMiddleware(s.origins, loggingMiddleware(mux))
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // model calls can be slow
	}

	log.Printf("[INFO] API server listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type askRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
	UsedRAG   bool     `json:"used_rag"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := s.agent.ProcessQuery(r.Context(), req.Query, req.SessionID)
	if resp.FailureDetail != "" {
		log.Printf("[ERROR] /ask fell back to apology: %s", resp.FailureDetail)
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:    resp.Answer,
		Sources:   resp.Sources,
		SessionID: resp.SessionID,
		UsedRAG:   resp.UsedRAG,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        Version,
		"llm_model":      s.llmModel,
		"vector_store":   s.vectorStore,
		"indexed_chunks": s.index.Count(),
	})
}

func (s *Server) handleCleanupSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	expired := s.sessions.ExpireOlderThan(time.Now(), s.sessionTTL)
	writeJSON(w, http.StatusOK, map[string]int{"expired": expired})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
