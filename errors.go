package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var errorsJSON bool

// errorsCmd prints the persisted critical error log
var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show critical errors recorded by the error scan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.errors.Records()
		out := cmd.OutOrStdout()

		if errorsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Fprintln(out, "No critical errors have been recorded.")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%s  %s\n", r.SavedAt.Local().Format("2006-01-02 15:04"), r.Line)
		}
		return nil
	},
}

func init() {
	errorsCmd.Flags().BoolVar(&errorsJSON, "json", false, "print records as JSON")
}
