package cmd

import (
	"context"

	"github.com/bnema/mmwall/internal/application"
	"github.com/spf13/cobra"
)

func newNextCmd(app *app) *cobra.Command {
	return newStepCmd(app, "next", nil, "Show the next image", func(ctx context.Context) (application.Result, error) {
		return app.service.Next(ctx)
	})
}

func newPreviousCmd(app *app) *cobra.Command {
	return newStepCmd(app, "previous", []string{"prev"}, "Go back to the previously shown image", func(ctx context.Context) (application.Result, error) {
		return app.service.Previous(ctx)
	})
}

func newStepCmd(app *app, use string, aliases []string, short string, step func(context.Context) (application.Result, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := step(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			rendered, err := app.resultRenderer(result)
			return writeRendered(cmd, rendered, err)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
