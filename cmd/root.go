package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "mmwall",
		Short:         "mmwall: a rotating wallpaper slideshow",
		Long:          "mmwall picks wallpapers from an image collection, favouring images that have not been shown recently, rotating through pools of the collection over time and remembering navigation history between runs.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipWireAnnotation] == "true" {
				return nil
			}
			return app.wire(cmd, configFile)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return app.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/mmwall/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newNextCmd(app),
		newPreviousCmd(app),
		newStatusCmd(app),
		newRefreshCmd(app),
		newPoolCmd(app),
		newLedgerCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
