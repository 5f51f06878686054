package cmd

import (
	"fmt"

	statusadapter "github.com/bnema/mmwall/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newLedgerCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or clear the recently shown ledger",
	}

	cmd.AddCommand(
		newLedgerListCmd(app),
		newLedgerResetCmd(app),
	)

	return cmd
}

func newLedgerListCmd(app *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently shown images with their current selection weight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, status.Ledger)
			}
			rendered, err := app.ledgerRenderer(status.Ledger, statusadapter.RenderOptions{Now: app.now(), Limit: limit})
			return writeRendered(cmd, rendered, err)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to list (0 lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newLedgerResetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget which images were shown recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cleared, err := app.service.ResetLedger(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d recently shown entries\n", cleared)
			return err
		},
	}
}
