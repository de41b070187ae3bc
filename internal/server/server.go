// Package server hosts the extraction HTTP service: the REST collaborator
// surface the ingestion client consumes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/ledgerline/ingest-cli/internal/llm"
	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/ocr"
	"github.com/ledgerline/ingest-cli/internal/store"
)

// Config tunes the HTTP service.
type Config struct {
	Port          int
	RatePerSecond float64
	RateBurst     int

	// PDF recovers a text layer from PDF payloads. When nil, PDF
	// submissions are rejected.
	PDF ocr.Extractor
}

// Server wires the extraction provider and store behind chi routes.
type Server struct {
	cfg      Config
	provider llm.Provider
	store    store.Store

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Server.
func New(cfg Config, provider llm.Provider, st store.Store) *Server {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	return &Server{
		cfg:      cfg,
		provider: provider,
		store:    st,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.With(s.rateLimit).Post("/ai/extract/document", s.handleExtract)
		r.Post("/ai/feedback", s.handleFeedback)
		r.Get("/ai/feedback/recent", s.handleRecentFeedback)
		r.Get("/contacts", s.handleContacts)
	})
	return r
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type extractRequest struct {
	Text        string `json:"text,omitempty"`
	FileDataURL string `json:"file_data_url,omitempty"`
	Type        string `json:"type"`
	Locale      string `json:"locale,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" && req.FileDataURL == "" {
		writeError(w, http.StatusBadRequest, "text or file_data_url is required")
		return
	}

	kind := model.DocumentKind(req.Type)
	if kind != model.KindInvoice && kind != model.KindReceipt {
		kind = model.KindInvoice
	}
	locale := "en"
	if tag, err := language.Parse(req.Locale); err == nil {
		locale = tag.String()
	}

	text := req.Text
	mode := "text"
	mimeType := ""
	if text == "" {
		var err error
		text, mode, mimeType, err = s.fileText(r.Context(), req.FileDataURL)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	start := time.Now()
	result, err := s.provider.Extract(r.Context(), text, kind, locale)
	if err != nil {
		zap.L().Error("extraction failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "extraction failed")
		return
	}
	if result.Meta != nil {
		result.Meta.Mode = mode
		result.Meta.MimeType = mimeType
	}
	zap.L().Info("document extracted",
		zap.String("kind", string(kind)),
		zap.String("mode", mode),
		zap.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, result)
}

// fileText recovers document text from a file data URL: text payloads decode
// directly, PDFs go through the configured text extractor.
func (s *Server) fileText(ctx context.Context, dataURL string) (text, mode, mimeType string, err error) {
	mimeType, data, err := ocr.ParseDataURL(dataURL)
	if err != nil {
		return "", "", "", eris.New("invalid file_data_url")
	}
	switch mimeType {
	case "text/plain":
		return string(data), "text", mimeType, nil
	case "application/pdf":
		if s.cfg.PDF == nil {
			return "", "", "", eris.New("file extraction requires a text layer")
		}
		text, err := s.cfg.PDF.ExtractText(ctx, data)
		if err != nil {
			zap.L().Warn("pdf text extraction failed", zap.Error(err))
			return "", "", "", eris.New("could not read a text layer from the PDF")
		}
		return text, "pdf", mimeType, nil
	default:
		return "", "", "", eris.Errorf("unsupported file type %s", mimeType)
	}
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb model.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fb.Source == "" || fb.Category == "" {
		writeError(w, http.StatusBadRequest, "source and category are required")
		return
	}
	saved, err := s.store.InsertFeedback(r.Context(), fb)
	if err != nil {
		zap.L().Error("persist feedback failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record feedback")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleRecentFeedback(w http.ResponseWriter, r *http.Request) {
	filter := store.FeedbackFilter{Source: r.URL.Query().Get("source")}
	items, err := s.store.ListRecentFeedback(r.Context(), filter)
	if err != nil {
		zap.L().Error("list feedback failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	if items == nil {
		items = []model.Feedback{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		zap.L().Error("list contacts failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

// rateLimit applies a per-client token bucket to the extraction endpoint.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter(host).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RatePerSecond), s.cfg.RateBurst)
		s.limiters[key] = l
	}
	return l
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
