package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camuig/tradebook/internal/config"
	"github.com/camuig/tradebook/internal/journal"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/trade"
)

// maxBodyBytes bounds JSON and upload bodies; trades may carry an inline
// screenshot.
const maxBodyBytes = 10 << 20

// Insighter produces a coaching text for a set of trades. It never fails;
// problems come back as user-facing text.
type Insighter interface {
	Analyze(ctx context.Context, apiKey string, trades []trade.Trade) string
}

type Server struct {
	httpServer *http.Server
	journal    *journal.Journal
	coach      Insighter
	config     *config.Config
	logger     *logger.Logger
	handler    http.Handler
}

func NewServer(j *journal.Journal, coach Insighter, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		journal: j,
		coach:   coach,
		config:  cfg,
		logger:  log,
	}

	mux := http.NewServeMux()

	// Trades
	mux.HandleFunc("GET /api/trades", s.handleListTrades)
	mux.HandleFunc("POST /api/trades", s.handleCreateTrade)
	mux.HandleFunc("GET /api/trades/{id}", s.handleGetTrade)
	mux.HandleFunc("PUT /api/trades/{id}", s.handleUpdateTrade)
	mux.HandleFunc("DELETE /api/trades/{id}", s.handleDeleteTrade)

	// Analytics
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/equity", s.handleEquity)
	mux.HandleFunc("GET /api/analytics/monthly", s.handleMonthly)

	// Settings
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)
	mux.HandleFunc("PUT /api/settings/equity", s.handlePutEquity)

	// Tools
	mux.HandleFunc("GET /api/export.csv", s.handleExport)
	mux.HandleFunc("POST /api/pips", s.handlePips)
	mux.HandleFunc("POST /api/screenshot", s.handleScreenshot)
	mux.HandleFunc("POST /api/insights", s.handleInsights)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleDashboard)

	s.handler = s.logRequests(mux)
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AITimeout() + 10*time.Second,
	}

	return s
}

// Handler exposes the routed handler for in-process use.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps domain errors to status codes. Storage and unexpected errors
// are logged and answered with a generic message.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var ve *trade.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, trade.ErrNotFound):
		writeError(w, http.StatusNotFound, "trade not found")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &trade.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}
