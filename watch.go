package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/pchelper/internal/maintenance"
)

// watchCmd runs the maintenance scheduler without the UI, reporting through the log
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the maintenance timers in the foreground without the UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched, err := a.newScheduler(maintenance.LogNotifier{Log: a.log})
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

		a.serveMetrics(ctx)

		<-ctx.Done()
		return nil
	},
}
