package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"klokfarm/internal/application"
	"klokfarm/internal/ports"
)

func newRunCmd() *cobra.Command {
	var walletsPath, proxiesPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Initialize the fleet and farm points until interrupted",
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
			if debug {
				cfg.Debug = true
			}

			app := wireApp(cfg)
			defer func() { _ = app.log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessions, err := app.bootstrap(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			scheduler := application.NewScheduler(
				sessions,
				app.prompts,
				ports.SystemSleeper{},
				countdownWaiter{out: cmd.OutOrStdout()},
				app.schedulerConfig(),
				app.log,
			)

			if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			app.log.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&walletsPath, "wallets", "", "Path to the wallet keys file (one key per line)")
	cmd.Flags().StringVar(&proxiesPath, "proxies", "", "Path to the proxies file (one URL per line)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
