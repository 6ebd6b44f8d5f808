package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/camuig/tradebook/internal/pips"
)

func newPipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pips",
		Short: "Pip size lookup and price/pip conversion",
		// Pure arithmetic, so skip loading config and logger.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	cmd.AddCommand(newPipsSizeCmd())
	cmd.AddCommand(newPipsConvertCmd())
	return cmd
}

func newPipsSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "size <symbol> <price>",
		Short:   "Print the pip size for a symbol at a price",
		Example: "  tradebook pips size USDJPY 150.25",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(pips.Size(args[0], args[1]), 'f', -1, 64))
			return err
		},
	}
}

func newPipsConvertCmd() *cobra.Command {
	var t pips.Ticket
	var direction string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Fill stop/target prices from pips or pips from prices",
		Example: `  tradebook pips convert --symbol EURUSD --entry 1.0850 --stop-pips 50 --target-pips 100
  tradebook pips convert --symbol XAUUSD --direction SHORT --entry 2300 --stop 2310`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := t
			out := pips.Ticket{}.
				Edit(pips.FieldSymbol, in.Symbol).
				Edit(pips.FieldDirection, direction).
				Edit(pips.FieldEntry, in.EntryPrice)
			if in.StopLoss != "" {
				out = out.Edit(pips.FieldStop, in.StopLoss)
			} else if in.StopPips != "" {
				out = out.Edit(pips.FieldStopPips, in.StopPips)
			}
			if in.TakeProfit != "" {
				out = out.Edit(pips.FieldTarget, in.TakeProfit)
			} else if in.TargetPips != "" {
				out = out.Edit(pips.FieldTargetPips, in.TargetPips)
			}
			if out.Direction == "" {
				return fmt.Errorf("unknown direction %q", direction)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "pip size:    %s\n", strconv.FormatFloat(out.PipSize(), 'f', -1, 64))
			fmt.Fprintf(w, "stop:        %s (%s pips)\n", dash(out.StopLoss), dash(out.StopPips))
			_, err := fmt.Fprintf(w, "target:      %s (%s pips)\n", dash(out.TakeProfit), dash(out.TargetPips))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&t.Symbol, "symbol", "", "instrument symbol")
	f.StringVar(&direction, "direction", "LONG", "LONG|SHORT")
	f.StringVar(&t.EntryPrice, "entry", "", "entry price")
	f.StringVar(&t.StopLoss, "stop", "", "stop-loss price")
	f.StringVar(&t.TakeProfit, "target", "", "take-profit price")
	f.StringVar(&t.StopPips, "stop-pips", "", "stop distance in pips")
	f.StringVar(&t.TargetPips, "target-pips", "", "target distance in pips")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
