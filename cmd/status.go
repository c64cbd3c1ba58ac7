package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// status performs a one-shot fleet bootstrap (proxy probe, authentication,
// points and rate-limit snapshots) and renders the board without farming.
func newStatusCmd() *cobra.Command {
	var walletsPath, proxiesPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Authenticate every account once and print the fleet board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if walletsPath != "" {
				cfg.WalletsFile = walletsPath
			}
			if proxiesPath != "" {
				cfg.ProxiesFile = proxiesPath
			}

			app := wireApp(cfg)
			defer func() { _ = app.log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = app.bootstrap(ctx, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&walletsPath, "wallets", "", "Path to the wallet keys file (one key per line)")
	cmd.Flags().StringVar(&proxiesPath, "proxies", "", "Path to the proxies file (one URL per line)")

	return cmd
}
