package cmd

import (
	"fmt"
	"time"

	statusadapter "github.com/bnema/mmwall/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newPoolCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect the rotating image pool",
	}

	cmd.AddCommand(newPoolShowCmd(app))

	return cmd
}

func newPoolShowCmd(app *app) *cobra.Command {
	var (
		at     string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the images in the pool active now or at --at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			when := app.now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				when = parsed
			}

			view, err := app.service.PoolAt(cmd.Context(), when)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, view)
			}
			rendered, err := app.poolRenderer(view, statusadapter.RenderOptions{Now: app.now(), Limit: limit})
			return writeRendered(cmd, rendered, err)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Preview the pool at an RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum images to list (0 lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
