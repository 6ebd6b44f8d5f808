package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/tradebook/internal/config"
	"github.com/camuig/tradebook/internal/journal"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/pips"
	"github.com/camuig/tradebook/internal/stats"
	"github.com/camuig/tradebook/internal/storage"
	"github.com/camuig/tradebook/internal/trade"
)

type fakeCoach struct {
	gotKey    string
	gotTrades []trade.Trade
}

func (f *fakeCoach) Analyze(_ context.Context, apiKey string, trades []trade.Trade) string {
	f.gotKey = apiKey
	f.gotTrades = trades
	if apiKey == "" {
		return "API Key required"
	}
	return "keep a tighter stop"
}

type testEnv struct {
	handler http.Handler
	coach   *fakeCoach
	repo    *storage.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cfg := config.Default()
	cfg.AI.APIKeyEnv = "TRADEBOOK_WEB_TEST_UNSET_KEY"
	log := logger.Nop()
	j := journal.New(repo, log,
		journal.WithClock(func() time.Time { return time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC) }))
	coach := &fakeCoach{}
	srv := NewServer(j, coach, cfg, log)
	return &testEnv{handler: srv.Handler(), coach: coach, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func tradeBody(symbol, date string, exit *float64) map[string]any {
	body := map[string]any{
		"symbol":     symbol,
		"direction":  "BUY",
		"entryDate":  date,
		"entryPrice": 100,
		"stopLoss":   90,
		"takeProfit": 120,
		"quantity":   10,
		"notes":      "test",
	}
	if exit != nil {
		body["exitPrice"] = *exit
	}
	return body
}

func ptr(v float64) *float64 { return &v }

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestCreateListUpdateDelete(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/trades", tradeBody("EURUSD", "2024-01-02", nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[trade.Trade](t, rr)
	assert.Len(t, created.ID, 26)
	assert.Equal(t, trade.StatusOpen, created.Status)
	assert.Equal(t, trade.Long, created.Direction)

	update := tradeBody("EURUSD", "2024-01-02", ptr(105))
	rr = env.do(t, http.MethodPut, "/api/trades/"+created.ID, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[trade.Trade](t, rr)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, trade.StatusWin, updated.Status)
	assert.Equal(t, 50.0, updated.PnL)

	rr = env.do(t, http.MethodGet, "/api/trades", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]trade.Trade](t, rr)
	require.Len(t, list, 1)

	rr = env.do(t, http.MethodGet, "/api/trades/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/trades/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/trades/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateValidationError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := tradeBody("EURUSD", "2024-01-02", nil)
	delete(body, "quantity")
	rr := env.do(t, http.MethodPost, "/api/trades", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[errorResponse](t, rr)
	assert.Equal(t, "quantity", resp.Field)

	rr = env.do(t, http.MethodPost, "/api/trades", "not an object")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateUnknownTrade(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPut, "/api/trades/nope", tradeBody("EURUSD", "2024-01-02", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListFilter(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, exit := range []*float64{ptr(110), ptr(95), nil} {
		rr := env.do(t, http.MethodPost, "/api/trades", tradeBody("EURUSD", "2024-01-02", exit))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/trades?filter=win", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	wins := decode[[]trade.Trade](t, rr)
	require.Len(t, wins, 1)
	assert.Equal(t, trade.StatusWin, wins[0].Status)

	rr = env.do(t, http.MethodGet, "/api/trades?filter=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/trades", tradeBody("A", "2024-01-02", ptr(150)))
	env.do(t, http.MethodPost, "/api/trades", tradeBody("B", "2024-01-05", ptr(80)))

	rr := env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	s := decode[stats.Stats](t, rr)
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 300.0, s.TotalPnL)
	assert.Equal(t, 50.0, s.WinRate)

	rr = env.do(t, http.MethodGet, "/api/equity", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	eq := decode[equityResponse](t, rr)
	require.Len(t, eq.Points, 3)
	assert.Equal(t, "Start", eq.Points[0].Label)
	assert.Equal(t, 10300.0, eq.Points[2].Balance)
	assert.Equal(t, 10300.0, eq.CurrentEquity)

	rr = env.do(t, http.MethodGet, "/api/analytics/monthly", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	monthly := decode[[]stats.MonthPnL](t, rr)
	assert.Equal(t, []stats.MonthPnL{{Month: "1/2024", PnL: 300}}, monthly)
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10000.0, decode[trade.Settings](t, rr).InitialBalance)

	rr = env.do(t, http.MethodPut, "/api/settings", map[string]any{"initialBalance": 2500})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2500.0, decode[trade.Settings](t, rr).InitialBalance)

	env.do(t, http.MethodPost, "/api/trades", tradeBody("A", "2024-01-02", ptr(150)))
	rr = env.do(t, http.MethodPut, "/api/settings/equity", map[string]any{"currentEquity": 3000})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2500.0, decode[trade.Settings](t, rr).InitialBalance)

	rr = env.do(t, http.MethodPut, "/api/settings", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/trades", tradeBody("EURUSD", "2024-03-05", ptr(105)))

	rr := env.do(t, http.MethodGet, "/api/export.csv", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="tbk_trades_2025-01-31.csv"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "ID,Symbol,Type,Date,Entry,Exit,Size,PnL,Status,Notes\n"))
	assert.Contains(t, rr.Body.String(), ",EURUSD,BUY,3/5/2024,100,105,10,50.00,WIN,\"test\"")
}

func TestPipsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/pips", map[string]any{
		"ticket": map[string]any{"symbol": "USDJPY", "entryPrice": "150.00"},
		"field":  "stopLoss",
		"value":  "149.50",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[pipsResponse](t, rr)
	assert.Equal(t, 0.01, resp.PipSize)
	assert.Equal(t, "50.0", resp.Ticket.StopPips)
	assert.Equal(t, pips.Ticket{
		Symbol: "USDJPY", Direction: trade.Long, EntryPrice: "150.00", StopLoss: "149.50", StopPips: "50.0",
	}, resp.Ticket)
}

func multipartImage(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "chart.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestScreenshotEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1200, 400))))

	body, ctype := multipartImage(t, img.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/api/screenshot", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasPrefix(decode[screenshotResponse](t, rr).DataURL, "data:image/jpeg;base64,"))

	body, ctype = multipartImage(t, []byte("garbage"))
	req = httptest.NewRequest(http.MethodPost, "/api/screenshot", body)
	req.Header.Set("Content-Type", ctype)
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Failed to process image.", decode[errorResponse](t, rr).Error)
}

func TestInsightsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for i := 1; i <= 3; i++ {
		env.do(t, http.MethodPost, "/api/trades", tradeBody("S", "2024-01-0"+string(rune('0'+i)), ptr(101)))
	}

	rr := env.do(t, http.MethodPost, "/api/insights", nil, "X-AI-Key", "sk-user")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[insightResponse](t, rr)
	assert.Equal(t, "keep a tighter stop", resp.Analysis)
	assert.Equal(t, 3, resp.Trades)
	assert.Equal(t, "sk-user", env.coach.gotKey)
	require.Len(t, env.coach.gotTrades, 3)
	assert.True(t, env.coach.gotTrades[0].EntryDate.Before(env.coach.gotTrades[2].EntryDate))

	rr = env.do(t, http.MethodPost, "/api/insights", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "API Key required", decode[insightResponse](t, rr).Analysis)
}

func TestDashboardAndHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/trades", tradeBody("XAUUSD", "2024-01-02", ptr(150)))

	rr := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "XAUUSD")
	assert.Contains(t, rr.Body.String(), "10500.00")

	rr = env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[healthResponse](t, rr).Storage)

	rr = env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStorageFailureIs500(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	require.NoError(t, env.repo.Close())

	rr := env.do(t, http.MethodGet, "/api/trades", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal error", decode[errorResponse](t, rr).Error)

	rr = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, "unavailable", decode[healthResponse](t, rr).Storage)
}
