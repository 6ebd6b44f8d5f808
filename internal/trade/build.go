package trade

import (
	"math"
	"strings"
	"time"
)

var entryDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEntryDate accepts RFC3339 timestamps, HTML datetime-local values and
// plain dates. Values without a zone are read as UTC.
func ParseEntryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range entryDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ZoneOffset is the UTC offset of t in seconds. Stores keep it next to the
// UTC instant so the entry's wall-clock date survives a round trip.
func ZoneOffset(t time.Time) int {
	_, offset := t.Zone()
	return offset
}

// AtOffset places the instant t back at a stored UTC offset. A zero offset
// yields UTC.
func AtOffset(t time.Time, offset int) time.Time {
	if offset == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", offset))
}

// Build validates a draft and derives status and PnL. newID is called only
// when the draft carries no ID; a nil newID falls back to NewID.
func Build(d Draft, newID func() string) (Trade, error) {
	symbol := strings.TrimSpace(d.Symbol)
	if symbol == "" {
		return Trade{}, newValidationError("symbol", "required")
	}

	dir, err := ParseDirection(string(d.Direction))
	if err != nil {
		return Trade{}, newValidationError("direction", err.Error())
	}

	if strings.TrimSpace(d.EntryDate) == "" {
		return Trade{}, newValidationError("entryDate", "required")
	}
	entryDate, err := ParseEntryDate(d.EntryDate)
	if err != nil {
		return Trade{}, newValidationError("entryDate", "not a date")
	}

	entry, err := requireFinite("entryPrice", d.EntryPrice)
	if err != nil {
		return Trade{}, err
	}
	stop, err := requireFinite("stopLoss", d.StopLoss)
	if err != nil {
		return Trade{}, err
	}
	target, err := requireFinite("takeProfit", d.TakeProfit)
	if err != nil {
		return Trade{}, err
	}
	qty, err := requireFinite("quantity", d.Quantity)
	if err != nil {
		return Trade{}, err
	}

	outcome, err := ParseOutcome(string(d.Outcome))
	if err != nil {
		return Trade{}, newValidationError("outcome", err.Error())
	}

	exit := d.ExitPrice
	if exit == nil {
		switch outcome {
		case OutcomeHitTarget:
			exit = &target
		case OutcomeHitStop:
			exit = &stop
		}
	}
	if exit != nil {
		if !finite(*exit) {
			return Trade{}, newValidationError("exitPrice", "must be a finite number")
		}
		v := *exit
		exit = &v
	}

	id := d.ID
	if id == "" {
		if newID == nil {
			newID = NewID
		}
		id = newID()
	}

	t := Trade{
		ID:         id,
		Symbol:     symbol,
		Direction:  dir,
		EntryDate:  entryDate,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		Quantity:   qty,
		ExitPrice:  exit,
		Notes:      d.Notes,
		Screenshot: d.Screenshot,
		Setup:      strings.TrimSpace(d.Setup),
	}
	t.Status, t.PnL = Derive(dir, entry, exit, qty)
	return t, nil
}

// Derive computes status and realized PnL from the priced fields.
func Derive(dir Direction, entry float64, exit *float64, qty float64) (Status, float64) {
	if exit == nil {
		return StatusOpen, 0
	}
	pnl := (*exit - entry) * qty * dir.Sign()
	switch {
	case pnl > 0:
		return StatusWin, pnl
	case pnl < 0:
		return StatusLoss, pnl
	default:
		return StatusBreakEven, pnl
	}
}

func requireFinite(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, newValidationError(field, "required")
	}
	if !finite(*v) {
		return 0, newValidationError(field, "must be a finite number")
	}
	return *v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
