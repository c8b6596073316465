package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rahulvramesh/pchelper/internal/errorlog"
	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/types"
	"github.com/rahulvramesh/pchelper/internal/utils"
)

// openDirMsg asks Update to start a cleanup session on Dir
type openDirMsg struct {
	Dir string
}

// jobMsg wraps one session message together with the channel it came from,
// so Update can keep draining that channel until the job closes it.
type jobMsg struct {
	msg session.Msg
	ch  <-chan session.Msg
}

type deleteCompleteMsg struct {
	Freed int64
	Paths []string
	Err   error
}

type tableMsg struct {
	state string
	table table.Model
}

type errMsg struct{ error }

// ReminderMsg is sent when the maintenance reminder fires
type ReminderMsg struct {
	IntervalDays int
}

// CriticalErrorsMsg is sent when the error scan found something
type CriticalErrorsMsg struct {
	Lines []string
}

// Notifier forwards scheduler notifications to a running program
type Notifier struct {
	send func(tea.Msg)
}

// NewNotifier creates a notifier for p
func NewNotifier(p *tea.Program) *Notifier {
	return &Notifier{send: p.Send}
}

func (n *Notifier) MaintenanceDue(intervalDays int) {
	n.send(ReminderMsg{IntervalDays: intervalDays})
}

func (n *Notifier) CriticalErrors(lines []string) {
	n.send(CriticalErrorsMsg{Lines: append([]string(nil), lines...)})
}

func openDirCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		return openDirMsg{Dir: dir}
	}
}

// runJob starts job on its own goroutine and returns the command that
// delivers its first message
func runJob(job *session.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	ch := make(chan session.Msg, 64)
	go func() {
		defer close(ch)
		job.Run(func(msg session.Msg) { ch <- msg })
	}()
	return waitForJob(ch)
}

func waitForJob(ch <-chan session.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return jobMsg{msg: msg, ch: ch}
	}
}

// performDelete removes entries off the UI goroutine. Known sizes are reused
// so nothing is walked twice.
func performDelete(sizer *scanner.Sizer, entries []types.FileEntry, log *logger.Logger) tea.Cmd {
	return func() tea.Msg {
		var (
			freed int64
			paths []string
			errs  []error
		)
		for _, e := range entries {
			s := sizer
			if e.SizeKnown() {
				s = nil
			}
			n, err := scanner.Remove(e.Path, s)
			if err != nil {
				log.Error("failed to delete", err, logger.Field{Key: "path", Value: e.Path})
				errs = append(errs, fmt.Errorf("delete %s: %w", e.Name, err))
				continue
			}
			if e.SizeKnown() {
				n = e.Size
			}
			freed += n
			paths = append(paths, e.Path)
		}
		log.Info("deleted entries",
			logger.Field{Key: "count", Value: len(paths)},
			logger.Field{Key: "freed", Value: freed})
		return deleteCompleteMsg{Freed: freed, Paths: paths, Err: errors.Join(errs...)}
	}
}

func showErrorLog(store *errorlog.Store) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return errMsg{fmt.Errorf("error log is not available")}
		}

		records := store.Records()
		rows := make([]table.Row, 0, len(records))
		// newest first
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			rows = append(rows, table.Row{
				r.SavedAt.Local().Format("2006-01-02 15:04"),
				utils.TruncatePath(r.Line, 90),
			})
		}

		columns := []table.Column{
			{Title: "Saved", Width: 16},
			{Title: "Error", Width: 90},
		}
		return tableMsg{state: "errors", table: newTable(columns, rows)}
	}
}

func showTimers(states func() []types.TimerState) tea.Cmd {
	return func() tea.Msg {
		if states == nil {
			return errMsg{fmt.Errorf("no timers are configured")}
		}

		var rows []table.Row
		for _, st := range states() {
			rows = append(rows, table.Row{
				st.Name,
				fmt.Sprintf("%d days", st.IntervalDays),
				st.LastReset.Format("2006-01-02"),
				utils.FormatAge(st.LastReset),
			})
		}

		columns := []table.Column{
			{Title: "Timer", Width: 16},
			{Title: "Interval", Width: 10},
			{Title: "Last reset", Width: 12},
			{Title: "Age", Width: 16},
		}
		return tableMsg{state: "timers", table: newTable(columns, rows)}
	}
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	height := len(rows) + 1
	if height > 20 {
		height = 20
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}
