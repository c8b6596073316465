package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/pchelper/internal/utils"
)

// timersCmd lists the configured maintenance timers
var timersCmd = &cobra.Command{
	Use:   "timers",
	Short: "Show maintenance timers and when they are due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMER\tINTERVAL\tLAST RESET\tAGE\tDUE")
		for _, st := range a.timerStates() {
			due := "no"
			if a.counter.DaysSince(st.Name) >= st.IntervalDays {
				due = "yes"
			}
			fmt.Fprintf(w, "%s\t%dd\t%s\t%s\t%s\n",
				st.Name, st.IntervalDays, st.LastReset.Format("2006-01-02"), utils.FormatAge(st.LastReset), due)
		}
		return w.Flush()
	},
}

// timersResetCmd marks a timer as handled today
var timersResetCmd = &cobra.Command{
	Use:   "reset <name>",
	Short: "Reset a timer to today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		known := false
		for _, t := range a.cfg.Timers {
			if t.Name == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown timer: %s", name)
		}

		a.counter.Reset(name)
		fmt.Fprintf(cmd.OutOrStdout(), "Timer %s reset to today.\n", name)
		return nil
	},
}

func init() {
	timersCmd.AddCommand(timersResetCmd)
}
