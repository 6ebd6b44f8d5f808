package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/camuig/tradebook/internal/ai"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		output string
		org    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all trades as CSV or Org-mode",
		Example: `  tradebook export
  tradebook export -o - > trades.csv
  tradebook export --org -o journal.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}

			write := j.Export
			if org {
				write = j.ExportOrg
			}

			if output == "-" {
				return write(cmd.Context(), cmd.OutOrStdout())
			}
			if output == "" {
				output = j.ExportFileName()
				if org {
					output = output[:len(output)-len(".csv")] + ".org"
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := write(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: tbk_trades_<date>.csv)")
	cmd.Flags().BoolVar(&org, "org", false, "write Org-mode entries instead of CSV")
	return cmd
}

func newInsightsCmd(app *App) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Ask the AI coach to review recent trades",
		Long: `Sends the most recent trades to the configured OpenAI-compatible
endpoint and prints the coaching text. The key is taken from --key or,
when empty, from the variable named by ai.api_key_env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}
			if key == "" {
				key = app.Config.FallbackAIKey()
			}
			trades, err := j.RecentForInsight(cmd.Context(), ai.RecentLimit)
			if err != nil {
				return err
			}
			return printInsight(cmd.OutOrStdout(), app.Coach().Analyze(cmd.Context(), key, trades))
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key for this request only")
	return cmd
}

func printInsight(out io.Writer, text string) error {
	_, err := fmt.Fprintln(out, text)
	return err
}
