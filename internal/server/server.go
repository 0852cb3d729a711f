// Package server provides the HTTP API and the embedded chat UI.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"ragchat/internal/domain"
	"ragchat/internal/port"
	"ragchat/internal/usecase"
)

//go:embed static/*
var staticFS embed.FS

// holidayPrompt backs the legacy /holiday route, which predates the
// retrieval pipeline and issues a single ungrounded generation.
const holidayPrompt = "Suggest one unusual holiday destination and " +
	"describe it in two short sentences."

// Server is the HTTP server for the chat API and UI.
type Server struct {
	chatUC *usecase.ChatUseCase
	chat   port.ChatModel
	addr   string

	// corpus is published once by the ingest pass; handlers read an
	// immutable snapshot. Requests arriving earlier are rejected.
	corpus atomic.Pointer[domain.Corpus]
}

// New creates a new HTTP server.
func New(chatUC *usecase.ChatUseCase, chat port.ChatModel, addr string) *Server {
	return &Server{
		chatUC: chatUC,
		chat:   chat,
		addr:   addr,
	}
}

// SetCorpus publishes the corpus and marks the server ready.
func (s *Server) SetCorpus(c *domain.Corpus) {
	s.corpus.Store(c)
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	staticContent, _ := fs.Sub(staticFS, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/holiday", s.handleHoliday)
	mux.HandleFunc("/api/health", s.handleHealth)

	return loggingMiddleware(mux)
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
	}

	log.Printf("[INFO] chat server starting on %s", s.addr)

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

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGenerate answers a chat prompt with retrieved context.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
		return
	}

	corpus := s.corpus.Load()
	if corpus.Size() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "corpus is still initializing"})
		return
	}

	answer, err := s.chatUC.Answer(r.Context(), req.Prompt, corpus)
	if err != nil {
		log.Printf("[WARN] generate failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleHoliday is the legacy single-shot generation route.
func (s *Server) handleHoliday(w http.ResponseWriter, r *http.Request) {
	text, err := s.chat.Generate(r.Context(), holidayPrompt)
	if err != nil {
		log.Printf("[WARN] holiday generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// handleHealth reports readiness and corpus size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	corpus := s.corpus.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"ready":     corpus.Size() > 0,
		"documents": corpus.Size(),
	})
}

// handleIndex serves the chat UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "UI not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
