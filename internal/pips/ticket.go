package pips

import (
	"math"
	"strconv"
	"strings"

	"github.com/camuig/tradebook/internal/trade"
)

type Field string

const (
	FieldSymbol     Field = "symbol"
	FieldDirection  Field = "direction"
	FieldEntry      Field = "entryPrice"
	FieldStop       Field = "stopLoss"
	FieldTarget     Field = "takeProfit"
	FieldStopPips   Field = "stopPips"
	FieldTargetPips Field = "targetPips"
)

// Ticket holds the risk inputs of a trade being entered, as text, so that a
// stop or target can be given either as a price or as a pip distance.
type Ticket struct {
	Symbol     string          `json:"symbol"`
	Direction  trade.Direction `json:"direction"`
	EntryPrice string          `json:"entryPrice"`
	StopLoss   string          `json:"stopLoss"`
	TakeProfit string          `json:"takeProfit"`
	StopPips   string          `json:"stopPips"`
	TargetPips string          `json:"targetPips"`
}

// PipSize is recomputed from the current symbol and entry text on every call.
func (t Ticket) PipSize() float64 {
	return Size(t.Symbol, t.EntryPrice)
}

// Edit applies one field change and returns the ticket with the dependent
// side recomputed. Inputs that do not parse leave the counterpart untouched.
func (t Ticket) Edit(field Field, value string) Ticket {
	switch field {
	case FieldSymbol:
		t.Symbol = value
	case FieldDirection:
		if d, err := trade.ParseDirection(value); err == nil {
			t.Direction = d
		}
		return t
	case FieldEntry:
		t.EntryPrice = value
	case FieldStop:
		t.StopLoss = value
	case FieldTarget:
		t.TakeProfit = value
	case FieldStopPips:
		t.StopPips = value
		return t.pipsToPrice(Stop)
	case FieldTargetPips:
		t.TargetPips = value
		return t.pipsToPrice(Target)
	default:
		return t
	}
	return t.priceToPips(field)
}

func (t Ticket) priceToPips(changed Field) Ticket {
	entry, ok := parse(t.EntryPrice)
	if !ok {
		return t
	}
	size := t.PipSize()

	if changed == FieldStop || (changed != FieldTarget && t.StopLoss != "") {
		if sl, ok := parse(t.StopLoss); ok {
			t.StopPips = formatPips(Distance(entry, sl, size))
		}
	}
	if changed == FieldTarget || (changed != FieldStop && t.TakeProfit != "") {
		if tp, ok := parse(t.TakeProfit); ok {
			t.TargetPips = formatPips(Distance(tp, entry, size))
		}
	}
	return t
}

func (t Ticket) pipsToPrice(level Level) Ticket {
	text := t.StopPips
	if level == Target {
		text = t.TargetPips
	}
	n, ok := parse(text)
	if !ok {
		return t
	}
	entry, ok := parse(t.EntryPrice)
	if !ok {
		return t
	}

	price := PriceFor(entry, n, t.PipSize(), t.Direction, level)
	out := strconv.FormatFloat(price, 'f', decimals(t.EntryPrice), 64)
	if level == Stop {
		t.StopLoss = out
	} else {
		t.TakeProfit = out
	}
	return t
}

func parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatPips(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// decimals is the number of fractional digits typed in s, or 2 when s has
// no fractional part.
func decimals(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 2
}
