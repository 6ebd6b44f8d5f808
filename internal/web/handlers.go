package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/tradebook/internal/journal"
	"github.com/camuig/tradebook/internal/trade"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(
	template.New("dashboard.html").Funcs(template.FuncMap{
		"money":   money,
		"percent": func(v float64) string { return decimal.NewFromFloat(v).StringFixed(1) + "%" },
		"ratio":   func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
		"date":    func(t time.Time) string { return t.Format("2006-01-02") },
		"exit": func(t trade.Trade) string {
			if t.ExitPrice == nil {
				return "-"
			}
			return decimal.NewFromFloat(*t.ExitPrice).String()
		},
	}).ParseFS(templateFS, "templates/dashboard.html"),
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// recentRows caps the trade table on the dashboard.
const recentRows = 50

type DashboardData struct {
	journal.Dashboard
	Recent      []trade.Trade
	HiddenCount int
	AIKeyEnv    string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.journal.Dashboard(r.Context())
	if err != nil {
		s.logger.Error("load dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := DashboardData{Dashboard: dash, Recent: dash.Trades, AIKeyEnv: s.config.AI.APIKeyEnv}
	if len(data.Recent) > recentRows {
		data.HiddenCount = len(data.Recent) - recentRows
		data.Recent = data.Recent[:recentRows]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.Error("execute template", "error", err)
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Storage   string `json:"storage"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storage := "ok"
	if _, err := s.journal.Settings(r.Context()); err != nil {
		storage = "unavailable"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Storage:   storage,
	})
}
