package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/camuig/tradebook/internal/ai"
	"github.com/camuig/tradebook/internal/pips"
	"github.com/camuig/tradebook/internal/screenshot"
	"github.com/camuig/tradebook/internal/stats"
	"github.com/camuig/tradebook/internal/trade"
)

// --- trades ---

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := stats.ParseFilter(strings.ToUpper(r.URL.Query().Get("filter")))
	if err != nil {
		s.fail(w, &trade.ValidationError{Field: "filter", Message: err.Error()})
		return
	}
	trades, err := s.journal.Filtered(r.Context(), filter)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var d trade.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		s.fail(w, err)
		return
	}
	saved, err := s.journal.Save(r.Context(), d)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.journal.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.journal.Get(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}

	var d trade.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		s.fail(w, err)
		return
	}
	d.ID = id

	saved, err := s.journal.Save(r.Context(), d)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- analytics ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	dash, err := s.journal.Dashboard(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash.Stats)
}

type equityResponse struct {
	InitialBalance float64             `json:"initialBalance"`
	CurrentEquity  float64             `json:"currentEquity"`
	Points         []stats.EquityPoint `json:"points"`
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	dash, err := s.journal.Dashboard(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equityResponse{
		InitialBalance: dash.InitialBalance,
		CurrentEquity:  dash.CurrentEquity,
		Points:         dash.Equity,
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	dash, err := s.journal.Dashboard(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash.Monthly)
}

// --- settings ---

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.journal.Settings(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	InitialBalance *float64 `json:"initialBalance"`
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if req.InitialBalance == nil {
		s.fail(w, &trade.ValidationError{Field: "initialBalance", Message: "required"})
		return
	}
	settings, err := s.journal.SetInitialBalance(r.Context(), *req.InitialBalance)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type equityRequest struct {
	CurrentEquity *float64 `json:"currentEquity"`
}

func (s *Server) handlePutEquity(w http.ResponseWriter, r *http.Request) {
	var req equityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if req.CurrentEquity == nil {
		s.fail(w, &trade.ValidationError{Field: "currentEquity", Message: "required"})
		return
	}
	settings, err := s.journal.SetCurrentEquity(r.Context(), *req.CurrentEquity)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// --- tools ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.journal.Export(r.Context(), &buf); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.journal.ExportFileName()+`"`)
	_, _ = w.Write(buf.Bytes())
}

type pipsRequest struct {
	Ticket pips.Ticket `json:"ticket"`
	Field  pips.Field  `json:"field"`
	Value  string      `json:"value"`
}

type pipsResponse struct {
	Ticket  pips.Ticket `json:"ticket"`
	PipSize float64     `json:"pipSize"`
}

func (s *Server) handlePips(w http.ResponseWriter, r *http.Request) {
	var req pipsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	tk := req.Ticket
	if tk.Direction == "" {
		tk.Direction = trade.Long
	}
	if req.Field != "" {
		tk = tk.Edit(req.Field, req.Value)
	}
	writeJSON(w, http.StatusOK, pipsResponse{Ticket: tk, PipSize: tk.PipSize()})
}

type screenshotResponse struct {
	DataURL string `json:"dataUrl"`
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		s.fail(w, &trade.ValidationError{Field: "file", Message: "image upload required"})
		return
	}
	defer file.Close()

	url, err := screenshot.Process(r.Context(), file)
	if err != nil {
		if errors.Is(err, screenshot.ErrDecode) {
			writeError(w, http.StatusBadRequest, "Failed to process image.")
			return
		}
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, screenshotResponse{DataURL: url})
}

type insightResponse struct {
	Analysis    string    `json:"analysis"`
	Trades      int       `json:"trades"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// handleInsights takes the key from X-AI-Key and falls back to the
// configured environment variable.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get("X-AI-Key"))
	if key == "" {
		key = s.config.FallbackAIKey()
	}

	trades, err := s.journal.RecentForInsight(r.Context(), ai.RecentLimit)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insightResponse{
		Analysis:    s.coach.Analyze(r.Context(), key, trades),
		Trades:      len(trades),
		GeneratedAt: time.Now().UTC(),
	})
}
