package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/pchelper/internal/config"
)

var configPath string

// rootCmd runs the cleanup UI when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "pchelper [dir]",
	Short: "PC Helper - periodic maintenance reminders and a disk cleanup browser",
	Long: `PC Helper reminds you to clean up on a schedule, records critical errors
from the system event log, and lets you browse a folder sorted by size to
delete what you no longer need.`,
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	RunE:          runClean,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to the configuration file")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(timersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(watchCmd)
}
