package trade

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ParseDirection accepts LONG/SHORT as well as the BUY/SELL aliases used by
// exported files, case-insensitively. An empty string defaults to Long.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LONG", "BUY":
		return Long, nil
	case "SHORT", "SELL":
		return Short, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Sign is +1 for Long and -1 for Short.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// WireName returns BUY or SELL.
func (d Direction) WireName() string {
	if d == Short {
		return "SELL"
	}
	return "BUY"
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusWin       Status = "WIN"
	StatusLoss      Status = "LOSS"
	StatusBreakEven Status = "BREAK_EVEN"
)

// Code is the short form written to exports (BE for break-even).
func (s Status) Code() string {
	if s == StatusBreakEven {
		return "BE"
	}
	return string(s)
}

// ParseStatus is the inverse of Code; it also accepts the long names.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN":
		return StatusOpen, nil
	case "WIN":
		return StatusWin, nil
	case "LOSS":
		return StatusLoss, nil
	case "BE", "BREAK_EVEN":
		return StatusBreakEven, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Outcome is how a draft says the position ended when no explicit exit price
// is given.
type Outcome string

const (
	OutcomeOpen      Outcome = "OPEN"
	OutcomeHitTarget Outcome = "HIT_TP"
	OutcomeHitStop   Outcome = "HIT_SL"
)

// ParseOutcome accepts OPEN/HIT_TP/HIT_SL and the TP/SL short forms,
// case-insensitively. An empty string means OPEN.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "OPEN":
		return OutcomeOpen, nil
	case "HIT_TP", "HIT TP", "TP":
		return OutcomeHitTarget, nil
	case "HIT_SL", "HIT SL", "SL":
		return OutcomeHitStop, nil
	default:
		return "", fmt.Errorf("unknown outcome %q", s)
	}
}

// Trade is one logged position. Status and PnL are always derived by Build.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryDate  time.Time `json:"entryDate"`
	EntryPrice float64   `json:"entryPrice"`
	StopLoss   float64   `json:"stopLoss"`
	TakeProfit float64   `json:"takeProfit"`
	Quantity   float64   `json:"quantity"`
	ExitPrice  *float64  `json:"exitPrice,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"`
	Setup      string    `json:"setup,omitempty"`
	Status     Status    `json:"status"`
	PnL        float64   `json:"pnl"`
}

// Closed reports whether the trade has a realized outcome.
func (t Trade) Closed() bool {
	return t.Status != StatusOpen
}

// Draft is user input before derivation. Pointer fields distinguish a
// missing value from zero.
type Draft struct {
	ID         string    `json:"id,omitempty"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryDate  string    `json:"entryDate"`
	EntryPrice *float64  `json:"entryPrice"`
	StopLoss   *float64  `json:"stopLoss"`
	TakeProfit *float64  `json:"takeProfit"`
	Quantity   *float64  `json:"quantity"`
	ExitPrice  *float64  `json:"exitPrice,omitempty"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"`
	Setup      string    `json:"setup,omitempty"`
}

// DraftOf turns a stored trade back into editable input, keeping its ID.
func DraftOf(t Trade) Draft {
	entry, stop, target, qty := t.EntryPrice, t.StopLoss, t.TakeProfit, t.Quantity
	d := Draft{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Direction:  t.Direction,
		EntryDate:  t.EntryDate.Format(time.RFC3339),
		EntryPrice: &entry,
		StopLoss:   &stop,
		TakeProfit: &target,
		Quantity:   &qty,
		Notes:      t.Notes,
		Screenshot: t.Screenshot,
		Setup:      t.Setup,
	}
	if t.ExitPrice != nil {
		exit := *t.ExitPrice
		d.ExitPrice = &exit
	}
	return d
}

const DefaultInitialBalance = 10000.0

// Settings is the singleton account record.
type Settings struct {
	InitialBalance float64 `json:"initialBalance"`
}

func DefaultSettings() Settings {
	return Settings{InitialBalance: DefaultInitialBalance}
}
