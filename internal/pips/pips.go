// Package pips converts between absolute price offsets and pip counts for
// loosely identified instruments.
package pips

import (
	"math"
	"strconv"
	"strings"

	"github.com/camuig/tradebook/internal/trade"
)

const DefaultSize = 0.0001

type rule struct {
	name  string
	match func(symbol string, price float64) bool
	size  float64
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// rules are evaluated in order; the first match wins. The symbol passed to
// match is already upper-cased and the price already parsed.
var rules = []rule{
	{"jpy", func(s string, _ float64) bool { return strings.Contains(s, "JPY") }, 0.01},
	{"gold", func(s string, _ float64) bool { return containsAny(s, "XAU", "GOLD") }, 0.1},
	{"silver", func(s string, _ float64) bool { return containsAny(s, "XAG", "SILVER") }, 0.01},
	{"index", func(s string, _ float64) bool {
		return containsAny(s, "US30", "NAS", "NDX", "SPX", "GER30", "DE30", "DOW")
	}, 1.0},
	{"crypto", func(s string, _ float64) bool { return containsAny(s, "BTC", "ETH", "SOL") }, 1.0},
	{"forex", func(s string, p float64) bool { return p < 50 && !strings.Contains(s, "JPY") }, 0.0001},
	{"high-price", func(_ string, p float64) bool { return p > 500 }, 1.0},
}

// Size returns the distance of one pip for symbol at the given reference
// price. A price that is not a finite decimal number yields DefaultSize.
func Size(symbol, referencePrice string) float64 {
	text := strings.TrimSpace(referencePrice)
	if strings.ContainsAny(text, "xX") {
		return DefaultSize
	}
	p, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return DefaultSize
	}
	s := strings.ToUpper(symbol)
	for _, r := range rules {
		if r.match(s, p) {
			return r.size
		}
	}
	return DefaultSize
}

// Distance is |a-b| expressed in pips.
func Distance(a, b, pipSize float64) float64 {
	return math.Abs(a-b) / pipSize
}

type Level int

const (
	Stop Level = iota
	Target
)

// PriceFor places a level pips away from entry on the side implied by the
// direction: stops below a long entry, targets above it, and the reverse
// for shorts.
func PriceFor(entry, pips, pipSize float64, dir trade.Direction, level Level) float64 {
	delta := pips * pipSize
	below := (level == Stop) == (dir != trade.Short)
	if below {
		return entry - delta
	}
	return entry + delta
}
