package cmd

import (
	statusadapter "github.com/bnema/mmwall/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current image, pool window, history and recently shown images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, status)
			}
			rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{Now: app.now(), Limit: limit})
			return writeRendered(cmd, rendered, err)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum history and ledger rows to list (0 lists all)")

	return cmd
}
