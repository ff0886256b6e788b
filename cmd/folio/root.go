package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/folioapp/folio/internal/app"
)

var (
	flagConfig  string
	flagSession string
	flagAPI     string
	flagRefresh int
	flagVerbose bool
)

func execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "folio",
		Short: "Track your reading from the terminal",
		Long: `Folio is a terminal client for a Book Reader server: browse your
collection, search the external catalog, and move books between reading
statuses. Run with no arguments for the interactive TUI, or use the
subcommands for one-shot operations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return app.Run(ctx, app.Options{
				ConfigPath:   flagConfig,
				SessionPath:  flagSession,
				APIBaseURL:   flagAPI,
				RefreshEvery: flagRefresh,
				Verbose:      flagVerbose,
			})
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/folio/config.toml)")
	root.PersistentFlags().StringVar(&flagSession, "session", "", "session file path (default ~/.config/folio/session.toml)")
	root.PersistentFlags().StringVar(&flagAPI, "api", "", "API base URL override")
	root.Flags().IntVar(&flagRefresh, "refresh", 0, "collection refresh interval in seconds (0 disables polling)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug-level logging")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newWhoamiCmd(),
		newListCmd(),
		newSearchCmd(),
		newRecommendCmd(),
		newAddCmd(),
		newStatusCmd(),
		newRemoveCmd(),
		newPriceCmd(),
	)
	return root
}
