package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/camuig/tradebook/internal/trade"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the account balance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print initial balance and current equity",
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
			fmt.Fprintf(cmd.OutOrStdout(), "initial balance: %s\ncurrent equity:  %s\n",
				formatMoney(dash.InitialBalance), formatMoney(dash.CurrentEquity))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "balance <amount>",
		Short: "Set the initial balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseAmount("initialBalance", args[0])
			if err != nil {
				return err
			}
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}
			s, err := j.SetInitialBalance(cmd.Context(), v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initial balance: %s\n", formatMoney(s.InitialBalance))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "equity <amount>",
		Short: "Set today's equity; the initial balance is back-calculated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseAmount("currentEquity", args[0])
			if err != nil {
				return err
			}
			j, err := app.Journal(cmd.Context())
			if err != nil {
				return err
			}
			s, err := j.SetCurrentEquity(cmd.Context(), v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initial balance: %s\n", formatMoney(s.InitialBalance))
			return nil
		},
	})

	return cmd
}

func parseAmount(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &trade.ValidationError{Field: field, Message: "not a number"}
	}
	return v, nil
}
