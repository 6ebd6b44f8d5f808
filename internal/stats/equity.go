package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/camuig/tradebook/internal/trade"
)

const (
	StartLabel       = "Start"
	equityLabelShape = "Jan 02"
)

type EquityPoint struct {
	Label   string    `json:"label"`
	Date    time.Time `json:"date,omitempty"`
	Balance float64   `json:"balance"`
}

// EquityCurve starts at initialBalance and adds one point per closed trade
// in entry-date order. Open trades contribute nothing.
func EquityCurve(trades []trade.Trade, initialBalance float64) []EquityPoint {
	sorted := make([]trade.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EntryDate.Before(sorted[j].EntryDate)
	})

	points := []EquityPoint{{Label: StartLabel, Balance: initialBalance}}
	balance := initialBalance
	for _, t := range sorted {
		if !t.Closed() {
			continue
		}
		balance += t.PnL
		points = append(points, EquityPoint{
			Label:   t.EntryDate.Format(equityLabelShape),
			Date:    t.EntryDate,
			Balance: balance,
		})
	}
	return points
}

type MonthPnL struct {
	Month string  `json:"month"`
	PnL   float64 `json:"pnl"`
}

// MonthlyPnL sums closed, non-zero PnL per calendar month of entry, labelled
// M/YYYY and ordered oldest first.
func MonthlyPnL(trades []trade.Trade) []MonthPnL {
	type key struct {
		year  int
		month time.Month
	}
	sums := map[key]float64{}
	for _, t := range chronological(trades) {
		if !t.Closed() || t.PnL == 0 {
			continue
		}
		k := key{t.EntryDate.Year(), t.EntryDate.Month()}
		sums[k] += t.PnL
	}

	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthPnL, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthPnL{
			Month: fmt.Sprintf("%d/%d", int(k.month), k.year),
			PnL:   sums[k],
		})
	}
	return out
}

type StatusFilter string

const (
	FilterAll  StatusFilter = "ALL"
	FilterWin  StatusFilter = "WIN"
	FilterLoss StatusFilter = "LOSS"
)

func ParseFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterWin, FilterLoss:
		return StatusFilter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q, expected ALL|WIN|LOSS", s)
}

// Filter keeps the input order.
func Filter(trades []trade.Trade, f StatusFilter) []trade.Trade {
	if f == FilterAll || f == "" {
		return trades
	}
	want := trade.StatusWin
	if f == FilterLoss {
		want = trade.StatusLoss
	}
	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status == want {
			out = append(out, t)
		}
	}
	return out
}

// CurrentEquity is the starting balance plus realized PnL.
func CurrentEquity(initialBalance float64, s Stats) float64 {
	return initialBalance + s.TotalPnL
}

// InitialForEquity back-calculates the starting balance that makes the
// current equity equal desired.
func InitialForEquity(desired float64, s Stats) float64 {
	return desired - s.TotalPnL
}
