package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "klokfarm",
		Short:         "klokfarm: farm chat points across many wallet accounts",
		Long:          "klokfarm authenticates a fleet of wallet accounts against the klokapp chat API, sends synthetic conversation turns to accumulate points, and schedules the fleet around the server's rate limits. Each account egresses through its own proxy.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newStatusCmd(),
	)

	return rootCmd
}
