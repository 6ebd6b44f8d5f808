package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/camuig/tradebook/internal/trade"
)

// OrgEntry renders a trade as an Org-mode heading with the structured facts
// in a PROPERTIES drawer and empty review sections to fill in by hand.
func OrgEntry(t trade.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)\n", t.Symbol, t.Direction.WireName(), shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":DIRECTION: %s\n", t.Direction)
	fmt.Fprintf(&b, ":ENTRY_DATE: %s\n", t.EntryDate.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":ENTRY_PRICE: %s\n", number(t.EntryPrice))
	fmt.Fprintf(&b, ":STOP_LOSS: %s\n", number(t.StopLoss))
	fmt.Fprintf(&b, ":TAKE_PROFIT: %s\n", number(t.TakeProfit))
	fmt.Fprintf(&b, ":QUANTITY: %s\n", number(t.Quantity))
	if t.ExitPrice != nil {
		fmt.Fprintf(&b, ":EXIT_PRICE: %s\n", number(*t.ExitPrice))
	}
	fmt.Fprintf(&b, ":STATUS: %s\n", t.Status)
	fmt.Fprintf(&b, ":PNL: %.2f\n", t.PnL)
	if t.Setup != "" {
		fmt.Fprintf(&b, ":SETUP: %s\n", t.Setup)
	}
	b.WriteString(":END:\n\n")

	b.WriteString("*** Thesis\n")
	if t.Notes != "" {
		for _, line := range strings.Split(t.Notes, "\n") {
			b.WriteString("- " + line + "\n")
		}
	} else {
		b.WriteString("- \n")
	}
	b.WriteString("\n*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// Org writes every trade as an Org entry, separated by blank lines.
func Org(w io.Writer, trades []trade.Trade) error {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(OrgEntry(t))
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write org: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
