package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/bnema/mmwall/internal/adapters/http/api"
	"github.com/bnema/mmwall/internal/application"
	"github.com/bnema/mmwall/internal/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var (
		listen   string
		noPlayer bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the slideshow and the control API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = app.settings.ServerListen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, app, listen, !noPlayer)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Control API listen address (default from server.listen)")
	cmd.Flags().BoolVar(&noPlayer, "no-player", false, "Only serve the API; do not advance on the slide interval")

	return cmd
}

func runServe(ctx context.Context, app *app, listen string, withPlayer bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverLog := logger.WithComponent(app.log, "api")
	server := api.NewServer(app.service, serverLog, api.Options{
		Rate:  app.settings.ServerRate,
		Burst: app.settings.ServerBurst,
	})

	playerDone := make(chan error, 1)
	if withPlayer {
		playerLog := logger.WithComponent(app.log, "player")
		player := application.NewPlayer(app.service, app.settings.SlideInterval, app.settings.UpdateInterval, func(err error) {
			playerLog.Error().Err(err).Msg("slideshow tick failed")
		})
		go func() {
			playerDone <- player.Run(ctx)
		}()
	} else {
		close(playerDone)
	}

	err := server.Serve(ctx, listen)
	cancel()
	playerErr := <-playerDone

	return errors.Join(err, playerErr)
}
