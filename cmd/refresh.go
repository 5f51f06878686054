package cmd

import (
	"fmt"

	"github.com/bnema/mmwall/internal/application"
	"github.com/spf13/cobra"
)

func newRefreshCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload the image collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				result, err := app.service.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd, result)
			}

			result, err := runSpinner(cmd.Context(), cmd.ErrOrStderr(), "Reloading collection...", app.service.Refresh, refreshSummary)
			if err != nil {
				return err
			}

			state := "unchanged"
			if result.Changed {
				state = "changed, history cleared"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "collection: %d images (%d received, %s)\n", result.Accepted, result.Received, state)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func refreshSummary(result application.RefreshResult) string {
	if dropped := result.Received - result.Accepted; dropped > 0 {
		return fmt.Sprintf("Accepted %d of %d images (%d dropped)", result.Accepted, result.Received, dropped)
	}
	return fmt.Sprintf("Accepted %d images", result.Accepted)
}
