// Package server exposes the humanisation pipeline over HTTP for the web
// frontend: rewrite requests, the mode catalogue, and the scrape-and-index
// workflow that grows the reference corpus.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/indexer"
	"github.com/valpere/humantone/internal/scraper"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Humaniser runs one rewrite request through the pipeline.
type Humaniser interface {
	Process(ctx context.Context, inputText string, mode internal.Mode) (*internal.Result, error)
}

// Fetcher retrieves a remote page for indexing.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*scraper.Page, error)
}

// PageIndexer stores a scraped page in the corpus.
type PageIndexer interface {
	IndexPage(ctx context.Context, page *scraper.Page, mode internal.Mode, description, contentDir string) (*indexer.PageResult, error)
}

// RunRecorder persists run history. Optional; recording failures never fail
// the request.
type RunRecorder interface {
	SaveRun(ctx context.Context, rec internal.RunRecord) error
}

type Server struct {
	pipeline   Humaniser
	fetcher    Fetcher
	indexer    PageIndexer
	runs       RunRecorder
	logger     *zap.Logger
	origins    map[string]bool
	contentDir string
}

// Options carries the optional collaborators; any field may be left zero.
type Options struct {
	Fetcher        Fetcher
	Indexer        PageIndexer
	Runs           RunRecorder
	AllowedOrigins []string
	ContentDir     string
}

func New(pipeline Humaniser, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]bool, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		origins[o] = true
	}
	return &Server{
		pipeline:   pipeline,
		fetcher:    opts.Fetcher,
		indexer:    opts.Indexer,
		runs:       opts.Runs,
		logger:     logger,
		origins:    origins,
		contentDir: opts.ContentDir,
	}
}

// Handler returns the full HTTP surface with logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/modes", s.handleModes)
	mux.HandleFunc("POST /api/humanise", s.handleHumanise)
	mux.HandleFunc("POST /api/scrape", s.handleScrape)

	return s.withLogging(s.withCORS(mux))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "humantone API",
		"version": Version,
		"status":  "operational",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]internal.ModeInfo{"modes": internal.Modes()})
}

// humaniseRequest mirrors the frontend's request shape. An omitted mode
// defaults to journalist.
type humaniseRequest struct {
	InputText string `json:"input_text"`
	Mode      string `json:"mode"`
}

func (s *Server) handleHumanise(w http.ResponseWriter, r *http.Request) {
	var req humaniseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Mode == "" {
		req.Mode = string(internal.ModeJournalist)
	}
	mode, err := internal.ParseMode(req.Mode)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := internal.ValidateInput(req.InputText); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.pipeline.Process(r.Context(), req.InputText, mode)
	if err != nil {
		s.logger.Error("pipeline run failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordRun(r, req.InputText, result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) recordRun(r *http.Request, inputText string, result *internal.Result) {
	if s.runs == nil {
		return
	}
	rec := internal.RunRecord{
		ID:           uuid.NewString(),
		Mode:         result.Mode,
		InputChars:   len([]rune(inputText)),
		OutputChars:  len([]rune(result.OutputText)),
		QualityScore: result.QualityScore,
		Iterations:   result.Iterations,
		ProcessingMS: result.ProcessingTimeMS,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.runs.SaveRun(r.Context(), rec); err != nil {
		s.logger.Warn("failed to record run", zap.Error(err))
	}
}

type scrapeRequest struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Description string `json:"description"`
}

// scrapeResponse matches the frontend's expectations for the scrape flow.
type scrapeResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	WordCount int    `json:"word_count"`
	Filename  string `json:"filename"`
	Error     string `json:"error"`
}

const (
	minDescriptionChars = 5
	maxDescriptionChars = 200
)

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil || s.indexer == nil {
		writeDetail(w, http.StatusServiceUnavailable, "scraping is not configured")
		return
	}

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	mode, err := validateScrape(req)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.logger.Warn("scrape failed", zap.String("url", req.URL), zap.Error(err))
		writeScrapeFailure(w, err)
		return
	}

	res, err := s.indexer.IndexPage(r.Context(), page, mode, req.Description, s.contentDir)
	if err != nil {
		s.logger.Warn("indexing failed", zap.String("url", req.URL), zap.Error(err))
		writeScrapeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		Success:   true,
		Message:   "Content scraped and indexed successfully",
		WordCount: res.WordCount,
		Filename:  res.Filename,
	})
}

func validateScrape(req scrapeRequest) (internal.Mode, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New("url must be a valid http or https URL")
	}
	mode, err := internal.ParseMode(req.ContentType)
	if err != nil {
		return "", err
	}
	n := len([]rune(strings.TrimSpace(req.Description)))
	if n < minDescriptionChars || n > maxDescriptionChars {
		return "", errors.New("description must be between 5 and 200 characters")
	}
	return mode, nil
}

func writeScrapeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, scrapeResponse{
		Success: false,
		Message: "Failed to scrape and index content",
		Error:   err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail emits the {"detail": ...} error shape the frontend parses.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.origins[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
