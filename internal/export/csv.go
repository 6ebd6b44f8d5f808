// Package export renders the trade log as files for spreadsheets and notes.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/tradebook/internal/trade"
)

const (
	DefaultDateLayout = "1/2/2006"
	csvHeader         = "ID,Symbol,Type,Date,Entry,Exit,Size,PnL,Status,Notes"
)

type Options struct {
	// DateLayout is a Go time layout for the Date column.
	DateLayout string
}

// CSV writes one row per trade in the given order. The Notes column is
// always quoted. Rows are separated by \n without a trailing newline.
func CSV(w io.Writer, trades []trade.Trade, opts Options) error {
	layout := opts.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	for _, t := range trades {
		b.WriteByte('\n')
		b.WriteString(row(t, layout))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func row(t trade.Trade, layout string) string {
	exit := ""
	if t.ExitPrice != nil {
		exit = number(*t.ExitPrice)
	}
	pnl := ""
	if t.Closed() {
		pnl = decimal.NewFromFloat(t.PnL).StringFixed(2)
	}

	fields := []string{
		quoteIfNeeded(t.ID),
		quoteIfNeeded(t.Symbol),
		t.Direction.WireName(),
		quoteIfNeeded(t.EntryDate.Format(layout)),
		number(t.EntryPrice),
		exit,
		number(t.Quantity),
		pnl,
		t.Status.Code(),
		quote(t.Notes),
	}
	return strings.Join(fields, ",")
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// quoteIfNeeded quotes s only when it holds a comma, quote or line break.
func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// FileName is the download name for an export produced at now.
func FileName(now time.Time) string {
	return "tbk_trades_" + now.Format("2006-01-02") + ".csv"
}
