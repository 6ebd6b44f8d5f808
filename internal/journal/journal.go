// Package journal is the application service behind the web and CLI
// surfaces. It turns drafts into stored trades and recomputes every derived
// view from the full collection on each read.
package journal

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/camuig/tradebook/internal/export"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/screenshot"
	"github.com/camuig/tradebook/internal/stats"
	"github.com/camuig/tradebook/internal/trade"
)

// Notifier is told about trades that reached an outcome.
type Notifier interface {
	NotifyTradeClosed(t trade.Trade)
}

type nopNotifier struct{}

func (nopNotifier) NotifyTradeClosed(trade.Trade) {}

type Journal struct {
	store      trade.Store
	notifier   Notifier
	logger     *logger.Logger
	clock      func() time.Time
	newID      func() string
	exportOpts export.Options
}

type Option func(*Journal)

func WithNotifier(n Notifier) Option {
	return func(j *Journal) {
		if n != nil {
			j.notifier = n
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(j *Journal) { j.clock = clock }
}

func WithIDs(newID func() string) Option {
	return func(j *Journal) { j.newID = newID }
}

func WithExportOptions(opts export.Options) Option {
	return func(j *Journal) { j.exportOpts = opts }
}

func New(store trade.Store, log *logger.Logger, opts ...Option) *Journal {
	j := &Journal{
		store:    store,
		notifier: nopNotifier{},
		logger:   log,
		clock:    time.Now,
		newID:    trade.NewID,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Save validates and derives the draft, then inserts or overwrites by ID.
// An attached screenshot must be a JPEG data URL as produced by
// screenshot.Process. The notifier hears about the trade when its outcome
// changed to a closed one.
func (j *Journal) Save(ctx context.Context, d trade.Draft) (trade.Trade, error) {
	t, err := trade.Build(d, j.newID)
	if err != nil {
		return trade.Trade{}, err
	}
	if t.Screenshot != "" {
		if _, err := screenshot.Decode(t.Screenshot); err != nil {
			return trade.Trade{}, &trade.ValidationError{Field: "screenshot", Message: "not a JPEG data URL"}
		}
	}

	var previous *trade.Trade
	if d.ID != "" {
		all, err := j.store.All(ctx)
		if err != nil {
			return trade.Trade{}, fmt.Errorf("save trade: %w", err)
		}
		for i := range all {
			if all[i].ID == d.ID {
				previous = &all[i]
				break
			}
		}
	}

	saved, err := j.store.Save(ctx, t)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("save trade: %w", err)
	}

	j.logger.Info("trade saved",
		"id", saved.ID,
		"symbol", saved.Symbol,
		"status", saved.Status,
		"update", previous != nil)

	if saved.Closed() && (previous == nil || previous.Status != saved.Status) {
		j.notifier.NotifyTradeClosed(saved)
	}
	return saved, nil
}

// Delete removes the trade. Unknown IDs are not an error.
func (j *Journal) Delete(ctx context.Context, id string) error {
	if err := j.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	j.logger.Info("trade deleted", "id", id)
	return nil
}

// Get returns trade.ErrNotFound for unknown IDs.
func (j *Journal) Get(ctx context.Context, id string) (trade.Trade, error) {
	all, err := j.store.All(ctx)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("load trades: %w", err)
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return trade.Trade{}, fmt.Errorf("%w: %s", trade.ErrNotFound, id)
}

// Trades returns every trade, newest entry first.
func (j *Journal) Trades(ctx context.Context) ([]trade.Trade, error) {
	all, err := j.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	sortNewestFirst(all)
	return all, nil
}

func (j *Journal) Filtered(ctx context.Context, f stats.StatusFilter) ([]trade.Trade, error) {
	all, err := j.Trades(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Filter(all, f), nil
}

type Dashboard struct {
	Trades         []trade.Trade       `json:"trades"`
	Stats          stats.Stats         `json:"stats"`
	Equity         []stats.EquityPoint `json:"equity"`
	Monthly        []stats.MonthPnL    `json:"monthly"`
	InitialBalance float64             `json:"initialBalance"`
	CurrentEquity  float64             `json:"currentEquity"`
}

func (j *Journal) Dashboard(ctx context.Context) (Dashboard, error) {
	all, err := j.Trades(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	settings, err := j.Settings(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	s := stats.Compute(all)
	return Dashboard{
		Trades:         all,
		Stats:          s,
		Equity:         stats.EquityCurve(all, settings.InitialBalance),
		Monthly:        stats.MonthlyPnL(all),
		InitialBalance: settings.InitialBalance,
		CurrentEquity:  stats.CurrentEquity(settings.InitialBalance, s),
	}, nil
}

func (j *Journal) Settings(ctx context.Context) (trade.Settings, error) {
	s, err := j.store.Settings(ctx)
	if err != nil {
		return trade.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (j *Journal) SetInitialBalance(ctx context.Context, v float64) (trade.Settings, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return trade.Settings{}, &trade.ValidationError{Field: "initialBalance", Message: "must be a finite number"}
	}
	s := trade.Settings{InitialBalance: v}
	if err := j.store.SaveSettings(ctx, s); err != nil {
		return trade.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	j.logger.Info("initial balance updated", "initial_balance", v)
	return s, nil
}

// SetCurrentEquity back-calculates and stores the initial balance that makes
// today's equity equal v.
func (j *Journal) SetCurrentEquity(ctx context.Context, v float64) (trade.Settings, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return trade.Settings{}, &trade.ValidationError{Field: "currentEquity", Message: "must be a finite number"}
	}
	all, err := j.store.All(ctx)
	if err != nil {
		return trade.Settings{}, fmt.Errorf("load trades: %w", err)
	}
	return j.SetInitialBalance(ctx, stats.InitialForEquity(v, stats.Compute(all)))
}

// Export writes the CSV export, newest entry first.
func (j *Journal) Export(ctx context.Context, w io.Writer) error {
	all, err := j.Trades(ctx)
	if err != nil {
		return err
	}
	return export.CSV(w, all, j.exportOpts)
}

func (j *Journal) ExportOrg(ctx context.Context, w io.Writer) error {
	all, err := j.Trades(ctx)
	if err != nil {
		return err
	}
	return export.Org(w, all)
}

// ExportFileName is the download name for an export made now.
func (j *Journal) ExportFileName() string {
	return export.FileName(j.clock())
}

// RecentForInsight returns up to n trades in entry-date order, oldest first,
// ending with the most recent one.
func (j *Journal) RecentForInsight(ctx context.Context, n int) ([]trade.Trade, error) {
	all, err := j.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].EntryDate.Before(all[b].EntryDate)
	})
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func sortNewestFirst(trades []trade.Trade) {
	sort.SliceStable(trades, func(a, b int) bool {
		return trades[a].EntryDate.After(trades[b].EntryDate)
	})
}
