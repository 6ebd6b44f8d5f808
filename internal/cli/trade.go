package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camuig/tradebook/internal/screenshot"
	"github.com/camuig/tradebook/internal/stats"
	"github.com/camuig/tradebook/internal/trade"
)

func newTradeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Add, list and delete trades",
	}
	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	return cmd
}

func newTradeAddCmd(app *App) *cobra.Command {
	var (
		d                                  trade.Draft
		direction, outcome, shotPath       string
		entry, stop, target, size, exitArg string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new trade or overwrite one by --id",
		Example: `  tradebook trade add --symbol EURUSD --direction BUY --date 2024-03-05 \
      --entry 1.0850 --stop 1.0800 --target 1.0950 --size 10000
  tradebook trade add --id 01HV... --symbol EURUSD --date 2024-03-05 \
      --entry 1.0850 --stop 1.0800 --target 1.0950 --size 10000 --outcome HIT_TP`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}

			d.Direction = trade.Direction(direction)
			d.Outcome = trade.Outcome(strings.ToUpper(outcome))
			for _, f := range []struct {
				name string
				raw  string
				dst  **float64
			}{
				{"entryPrice", entry, &d.EntryPrice},
				{"stopLoss", stop, &d.StopLoss},
				{"takeProfit", target, &d.TakeProfit},
				{"quantity", size, &d.Quantity},
				{"exitPrice", exitArg, &d.ExitPrice},
			} {
				v, err := optionalFloat(f.name, f.raw)
				if err != nil {
					return err
				}
				*f.dst = v
			}

			if shotPath != "" {
				f, err := os.Open(shotPath)
				if err != nil {
					return fmt.Errorf("open screenshot: %w", err)
				}
				shot, err := screenshot.Process(cmd.Context(), f)
				f.Close()
				if err != nil {
					return err
				}
				d.Screenshot = shot
			}

			saved, err := j.Save(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s %s %s pnl=%s\n",
				saved.ID, saved.Symbol, saved.Direction.WireName(), saved.Status.Code(), formatMoney(saved.PnL))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&d.ID, "id", "", "existing trade ID to overwrite")
	f.StringVar(&d.Symbol, "symbol", "", "instrument symbol")
	f.StringVar(&direction, "direction", "LONG", "LONG|SHORT (BUY|SELL accepted)")
	f.StringVar(&d.EntryDate, "date", "", "entry date (YYYY-MM-DD or RFC3339)")
	f.StringVar(&entry, "entry", "", "entry price")
	f.StringVar(&stop, "stop", "", "stop-loss price")
	f.StringVar(&target, "target", "", "take-profit price")
	f.StringVar(&size, "size", "", "position size")
	f.StringVar(&exitArg, "exit", "", "exit price, leave empty while open")
	f.StringVar(&outcome, "outcome", "", "HIT_TP or HIT_SL instead of --exit")
	f.StringVar(&d.Notes, "notes", "", "free-form notes")
	f.StringVar(&d.Setup, "setup", "", "setup or strategy tag")
	f.StringVar(&shotPath, "screenshot", "", "chart image (png, jpeg or gif) to attach")
	return cmd
}

func optionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &trade.ValidationError{Field: field, Message: "not a number"}
	}
	return &v, nil
}

func newTradeListCmd(app *App) *cobra.Command {
	var (
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := stats.ParseFilter(strings.ToUpper(filter))
			if err != nil {
				return err
			}
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}
			trades, err := j.Filtered(cmd.Context(), sf)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), trades)
			}
			return printTrades(cmd.OutOrStdout(), trades)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "ALL", "ALL|WIN|LOSS")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printTrades(out io.Writer, trades []trade.Trade) error {
	if len(trades) == 0 {
		_, err := fmt.Fprintln(out, "no trades")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSYMBOL\tSIDE\tENTRY\tEXIT\tSIZE\tPNL\tSTATUS")
	for _, t := range trades {
		exit, pnl := "-", "-"
		if t.ExitPrice != nil {
			exit = strconv.FormatFloat(*t.ExitPrice, 'f', -1, 64)
		}
		if t.Closed() {
			pnl = formatMoney(t.PnL)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%s\t%g\t%s\t%s\n",
			t.ID, t.EntryDate.Format("2006-01-02"), t.Symbol, t.Direction.WireName(),
			t.EntryPrice, exit, t.Quantity, pnl, t.Status.Code())
	}
	return tw.Flush()
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a trade by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := j.Get(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := j.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
