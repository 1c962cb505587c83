// Package cmd defines and implements the CLI commands for the mooncaker
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	dryRun  bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mooncaker",
		Short: "A ranked-ladder match crawler for League of Legends.",
		Long: `mooncaker walks the ranked ladders of the configured regions, tiers and
divisions, discovers the recent matches of every listed player, derives the
role each participant played, and persists one compact document per match.

Configuration comes from an optional YAML file plus MOONCAKER_* environment
variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "crawl into an in-memory store instead of Postgres")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
