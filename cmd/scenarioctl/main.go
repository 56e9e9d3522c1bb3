package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scenarioctl",
		Short: "Inspect and run bitrate throttling experiments",
		Long: `scenarioctl previews the bitrate scenario assigned to each experiment id,
starts experiments against the configured API and store, and reports or
clears the experiment that is currently armed.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "configs/config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newTableCmd(),
		newScenarioCmd(),
		newStartCmd(),
		newStatusCmd(),
		newFinishCmd(),
	)
	return rootCmd
}
