package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/pchelper/internal/config"
)

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

// configValidateCmd checks the configuration file
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		errs := cfg.Validate()
		out := cmd.OutOrStdout()
		for _, e := range errs {
			fmt.Fprintf(out, "  - %v\n", e)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d configuration errors", len(errs))
		}
		fmt.Fprintf(out, "Configuration %s is valid.\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
