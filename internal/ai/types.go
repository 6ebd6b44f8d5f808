package ai

import (
	"time"

	"github.com/camuig/tradebook/internal/trade"
)

// RecentLimit caps how many trades are sent per analysis.
const RecentLimit = 20

// TradeSummary is the slice of a trade the coach gets to see.
type TradeSummary struct {
	Symbol string   `json:"symbol"`
	Type   string   `json:"type"`
	Status string   `json:"status"`
	PnL    *float64 `json:"pnl,omitempty"`
	Date   string   `json:"date"`
	Notes  string   `json:"notes,omitempty"`
}

// Summarize keeps the last RecentLimit trades in the order given.
func Summarize(trades []trade.Trade) []TradeSummary {
	if len(trades) > RecentLimit {
		trades = trades[len(trades)-RecentLimit:]
	}
	out := make([]TradeSummary, 0, len(trades))
	for _, t := range trades {
		s := TradeSummary{
			Symbol: t.Symbol,
			Type:   t.Direction.WireName(),
			Status: t.Status.Code(),
			Date:   t.EntryDate.Format(time.RFC3339),
			Notes:  t.Notes,
		}
		if t.Closed() {
			pnl := t.PnL
			s.PnL = &pnl
		}
		out = append(out, s)
	}
	return out
}
