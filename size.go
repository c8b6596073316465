package main

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/types"
	"github.com/rahulvramesh/pchelper/internal/utils"
)

var (
	sizeSort  string
	sizeLimit int
)

// sizeCmd prints the entries of a folder with their sizes without the UI
var sizeCmd = &cobra.Command{
	Use:   "size [dir]",
	Short: "Print the entries of a folder sorted by size",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		key, err := types.ParseSortKey(sizeSort)
		if err != nil {
			return err
		}
		dir := a.cfg.Cleanup.Root
		if len(args) > 0 {
			dir = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		c := session.NewController(ctx, a.lister, a.sizer, a.log)
		direction := types.Descending
		if key == types.SortByName {
			direction = types.Ascending
		}
		c.SetSort(key, direction)
		c.Open(dir)
		c.Wait()

		snap := c.Snapshot()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for i, e := range snap.Entries {
			if sizeLimit > 0 && i >= sizeLimit {
				break
			}
			name := e.Name
			if e.IsDir {
				name += string(os.PathSeparator)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", utils.FormatFileSize(e.Size), name, utils.FormatAge(e.ModTime))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if snap.State == session.Cancelled {
			return fmt.Errorf("interrupted after %d of %d entries", snap.Progress.Completed, snap.Progress.Total)
		}
		return nil
	},
}

func init() {
	sizeCmd.Flags().StringVar(&sizeSort, "sort", "size", "sort key: size, name or modified")
	sizeCmd.Flags().IntVar(&sizeLimit, "limit", 0, "print at most this many entries (0 = all)")
}
