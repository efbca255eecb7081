package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"orgopivy/internal/domain"
	"orgopivy/internal/storage"
)

// QAPort is the server-facing subset of the QA service.
type QAPort interface {
	Ingest(storedName string) (int, error)
	Search(query string, topK int) ([]domain.ScoredChunk, error)
	Ask(question string, topK int) (domain.Answer, error)
}

// Server exposes the upload, ingest, search and ask operations over HTTP.
type Server struct {
	uploads *storage.UploadStore
	qa      QAPort
	log     *slog.Logger
	origins map[string]struct{}
	limiter *rate.Limiter
}

// Config holds the HTTP-surface policy knobs.
type Config struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func New(uploads *storage.UploadStore, qa QAPort, log *slog.Logger, cfg Config) *Server {
	origins := make(map[string]struct{}, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		origins[o] = struct{}{}
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 50
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 100
	}
	return &Server{
		uploads: uploads,
		qa:      qa,
		log:     log,
		origins: origins,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Handler builds the route table with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /uploads", s.handleListUploads)
	mux.HandleFunc("GET /uploads/{stored_filename}/text", s.handleUploadText)
	mux.HandleFunc("POST /uploads/{stored_filename}/ingest", s.handleIngest)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /ask", s.handleAskGet)
	mux.HandleFunc("POST /ask", s.handleAskPost)
	return s.logRequests(s.cors(s.rateLimit(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	storedName, err := s.uploads.Save(header.Filename, content)
	if err != nil {
		s.log.Error("save upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"original_filename": header.Filename,
		"stored_filename":   storedName,
		"bytes":             len(content),
	})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	items, err := s.uploads.List()
	if err != nil {
		s.log.Error("list uploads failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}
	if items == nil {
		items = []storage.Upload{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (s *Server) handleUploadText(w http.ResponseWriter, r *http.Request) {
	storedName := r.PathValue("stored_filename")
	text, err := s.uploads.ReadText(storedName)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stored_filename": storedName, "text": text})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	storedName := r.PathValue("stored_filename")
	chunkCount, err := s.qa.Ingest(storedName)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stored_filename": storedName, "chunk_count": chunkCount})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	k := queryInt(r, "k", 5)
	results, err := s.qa.Search(q, k)
	if err != nil {
		s.log.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []domain.ScoredChunk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"q": q, "k": k, "results": results})
}

func (s *Server) handleAskGet(w http.ResponseWriter, r *http.Request) {
	s.ask(w, r.URL.Query().Get("q"), queryInt(r, "k", 5))
}

func (s *Server) handleAskPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TopK == 0 {
		req.TopK = 5
	}
	s.ask(w, req.Question, req.TopK)
}

func (s *Server) ask(w http.ResponseWriter, question string, topK int) {
	answer, err := s.qa.Ask(question, topK)
	if err != nil {
		s.log.Error("ask failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ask failed")
		return
	}
	if answer.Contexts == nil {
		answer.Contexts = []domain.AnswerContext{}
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, storage.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "Only .txt supported for now")
	default:
		s.log.Error("storage error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := s.origins[origin]; ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "*")
			h.Set("Access-Control-Allow-Headers", "*")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
