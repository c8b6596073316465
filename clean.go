package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/types"
	"github.com/rahulvramesh/pchelper/internal/ui"
)

// cleanCmd opens the interactive cleanup browser
var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Browse a folder sorted by size and delete entries",
	Long: `Open the interactive cleanup browser on dir (default: cleanup.root from the
configuration). The maintenance scheduler runs in the background while the
browser is open.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.cfg.Cleanup.Root
	if len(args) > 0 {
		dir = args[0]
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	view := session.NewView(a.lister, a.sizer, a.log)
	if key, err := types.ParseSortKey(a.cfg.Cleanup.Sort); err == nil {
		dir := types.Descending
		if key == types.SortByName {
			dir = types.Ascending
		}
		view.SetSort(key, dir)
	}

	model := ui.InitialModel(ui.Deps{
		Ctx:    ctx,
		View:   view,
		Sizer:  a.sizer,
		Errors: a.errors,
		Timers: a.timerStates,
		Root:   a.cfg.Cleanup.Root,
		Log:    a.log,
	}, dir)

	p := tea.NewProgram(model, tea.WithAltScreen())

	sched, err := a.newScheduler(ui.NewNotifier(p))
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	a.serveMetrics(ctx)

	a.log.Info("cleanup browser started")
	_, err = p.Run()
	return err
}
