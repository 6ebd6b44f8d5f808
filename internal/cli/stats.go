package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func newStatsCmd(app *App) *cobra.Command {
	var (
		asJSON     bool
		showEquity bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show performance statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}
			dash, err := j.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				dash.Trades = nil
				return writeJSON(out, dash)
			}

			s := dash.Stats
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Trades\t%d\n", s.TotalTrades)
			fmt.Fprintf(tw, "Win rate\t%s%%\n", decimal.NewFromFloat(s.WinRate).StringFixed(1))
			fmt.Fprintf(tw, "Total P&L\t%s\n", formatMoney(s.TotalPnL))
			fmt.Fprintf(tw, "Best / worst\t%s / %s\n", formatMoney(s.BestTrade), formatMoney(s.WorstTrade))
			fmt.Fprintf(tw, "Profit factor\t%s\n", decimal.NewFromFloat(s.ProfitFactor).StringFixed(2))
			fmt.Fprintf(tw, "Avg R:R\t%s\n", decimal.NewFromFloat(s.AvgRiskReward).StringFixed(2))
			fmt.Fprintf(tw, "Streaks W / L\t%d / %d\n", s.ConsecutiveWins, s.ConsecutiveLosses)
			fmt.Fprintf(tw, "Initial balance\t%s\n", formatMoney(dash.InitialBalance))
			fmt.Fprintf(tw, "Current equity\t%s\n", formatMoney(dash.CurrentEquity))
			if showEquity {
				fmt.Fprintln(tw)
				for _, p := range dash.Equity {
					fmt.Fprintf(tw, "%s\t%s\n", p.Label, formatMoney(p.Balance))
				}
				fmt.Fprintln(tw)
				for _, m := range dash.Monthly {
					fmt.Fprintf(tw, "%s\t%s\n", m.Month, formatMoney(m.PnL))
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&showEquity, "equity", false, "also print the equity curve and monthly P&L")
	return cmd
}
