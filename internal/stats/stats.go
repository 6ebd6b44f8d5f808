// Package stats derives performance views from a trade collection. Every
// function is pure and recomputes from the full input.
package stats

import (
	"math"
	"sort"

	"github.com/camuig/tradebook/internal/trade"
)

type Stats struct {
	TotalTrades       int     `json:"totalTrades"`
	WinRate           float64 `json:"winRate"`
	TotalPnL          float64 `json:"totalPnL"`
	BestTrade         float64 `json:"bestTrade"`
	WorstTrade        float64 `json:"worstTrade"`
	ProfitFactor      float64 `json:"profitFactor"`
	AvgRiskReward     float64 `json:"avgRiskReward"`
	ConsecutiveWins   int     `json:"consecutiveWins"`
	ConsecutiveLosses int     `json:"consecutiveLosses"`
}

// RiskReward is the planned reward/risk ratio. ok is false when the stop
// sits on the entry.
func RiskReward(entry, stop, target float64) (rr float64, ok bool) {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0, false
	}
	return math.Abs(target-entry) / risk, true
}

// Compute aggregates trades. TotalTrades counts open trades too; every
// other figure only looks at closed ones. The result does not depend on
// the order of the input.
func Compute(trades []trade.Trade) Stats {
	s := Stats{TotalTrades: len(trades)}

	ordered := chronological(trades)

	var (
		closed, wins          int
		grossProfit, grossNeg float64
		rrSum                 float64
		rrCount               int
		first                 = true
	)
	for _, t := range ordered {
		if !t.Closed() {
			continue
		}
		closed++
		s.TotalPnL += t.PnL

		if first {
			s.BestTrade, s.WorstTrade = t.PnL, t.PnL
			first = false
		} else {
			s.BestTrade = math.Max(s.BestTrade, t.PnL)
			s.WorstTrade = math.Min(s.WorstTrade, t.PnL)
		}

		if t.PnL > 0 {
			wins++
			grossProfit += t.PnL
		} else {
			grossNeg += t.PnL
		}

		if rr, ok := RiskReward(t.EntryPrice, t.StopLoss, t.TakeProfit); ok {
			rrSum += rr
			rrCount++
		}
	}

	if closed == 0 {
		return s
	}

	s.WinRate = 100 * float64(wins) / float64(closed)

	grossLoss := math.Abs(grossNeg)
	if grossLoss == 0 {
		s.ProfitFactor = grossProfit
	} else {
		s.ProfitFactor = grossProfit / grossLoss
	}

	if rrCount > 0 {
		s.AvgRiskReward = rrSum / float64(rrCount)
	}

	s.ConsecutiveWins, s.ConsecutiveLosses = streaks(ordered)
	return s
}

// streaks returns the longest runs of WIN and LOSS in entry-date order.
// Open trades are skipped; a break-even ends both runs.
func streaks(ordered []trade.Trade) (maxWins, maxLosses int) {
	var wins, losses int
	for _, t := range ordered {
		switch t.Status {
		case trade.StatusWin:
			wins++
			losses = 0
		case trade.StatusLoss:
			losses++
			wins = 0
		case trade.StatusBreakEven:
			wins, losses = 0, 0
		default:
			continue
		}
		if wins > maxWins {
			maxWins = wins
		}
		if losses > maxLosses {
			maxLosses = losses
		}
	}
	return maxWins, maxLosses
}

// chronological returns a copy ordered by entry date with deterministic tie
// breaks, so floating point sums come out identical for any input order.
func chronological(trades []trade.Trade) []trade.Trade {
	out := make([]trade.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.PnL != b.PnL {
			return a.PnL < b.PnL
		}
		if a.EntryPrice != b.EntryPrice {
			return a.EntryPrice < b.EntryPrice
		}
		if a.StopLoss != b.StopLoss {
			return a.StopLoss < b.StopLoss
		}
		return a.TakeProfit < b.TakeProfit
	})
	return out
}
