package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/types"
)

const menuItems = 4

// Update handles messages. It is the only place the session view is changed.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openDirMsg:
		return m.open(msg.Dir)

	case jobMsg:
		if m.deps.View.Apply(msg.msg) {
			m.syncCursor()
			if _, ok := msg.msg.(session.DoneMsg); ok {
				snap := m.deps.View.Snapshot()
				m.deps.Log.Debug("sizing finished",
					logger.Field{Key: "dir", Value: snap.Dir},
					logger.Field{Key: "entries", Value: len(snap.Entries)})
			}
		}
		return m, waitForJob(msg.ch)

	case deleteCompleteMsg:
		m.deps.View.Remove(msg.Paths...)
		m.syncCursor()
		m.state = "cleanup"
		m.err = msg.Err
		m.message = fmt.Sprintf("✅ Deleted %d items (%s)", len(msg.Paths), humanize.Bytes(uint64(msg.Freed)))
		return m, nil

	case tableMsg:
		m.table = msg.table
		m.state = msg.state
		return m, nil

	case ReminderMsg:
		m.notice = fmt.Sprintf("🧹 It has been %d days since the last cleanup. Choose \"Clean up a folder\" to start.", msg.IntervalDays)
		return m, nil

	case CriticalErrorsMsg:
		m.notice = fmt.Sprintf("⚠️  %d critical errors were found in the system log. Open \"Error log\" to review them.", len(msg.Lines))
		return m, nil

	case errMsg:
		m.err = msg.error
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.deps.View.Cancel()
		return m, tea.Quit
	}

	switch m.state {
	case "menu":
		return m.handleMenuKey(key)
	case "cleanup":
		return m.handleCleanupKey(key)
	case "confirm":
		return m.handleConfirmKey(key)
	case "errors", "timers":
		switch key {
		case "esc", "q":
			m.state = "menu"
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMenuKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.menuChoice > 0 {
			m.menuChoice--
		}
	case "down", "j":
		if m.menuChoice < menuItems-1 {
			m.menuChoice++
		}
	case "enter":
		m.err = nil
		switch m.menuChoice {
		case 0: // Clean up
			m.notice = ""
			if m.deps.View.State() != session.Idle {
				m.state = "cleanup"
				return m, nil
			}
			return m.open(m.deps.Root)
		case 1: // Error log
			return m, showErrorLog(m.deps.Errors)
		case 2: // Timers
			return m, showTimers(m.deps.Timers)
		case 3: // Exit
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleCleanupKey(key string) (tea.Model, tea.Cmd) {
	view := m.deps.View
	snap := view.Snapshot()
	entries := snap.Entries

	switch key {
	case "q":
		view.Cancel()
		m.state = "menu"

	case "esc":
		// first press stops sizing, the second leaves the view
		if !view.Cancel() {
			m.state = "menu"
		}

	case "up", "k":
		m.moveCursor(entries, -1)
	case "down", "j":
		m.moveCursor(entries, 1)
	case "pgup":
		m.moveCursor(entries, -m.viewportHeight())
	case "pgdown":
		m.moveCursor(entries, m.viewportHeight())

	case "enter":
		if e, ok := m.current(entries); ok && e.IsDir {
			job, err := view.NavigateInto(m.deps.Ctx, e.Path)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.resetCursor()
			return m, runJob(job)
		}

	case "backspace":
		if job := view.NavigateUp(m.deps.Ctx); job != nil {
			m.resetCursor()
			return m, runJob(job)
		}

	case "s":
		view.SetSort(snap.SortKey.Next(), snap.SortDir)
		m.syncCursor()
	case "r":
		view.SetSort(snap.SortKey, snap.SortDir.Reverse())
		m.syncCursor()

	case " ":
		if e, ok := m.current(entries); ok {
			view.ToggleSelect(e.Path)
		}
	case "A":
		view.SelectAll()
	case "N":
		view.ClearSelection()

	case "D":
		if selected := view.Selected(); len(selected) > 0 {
			m.pending = selected
			m.state = "confirm"
		}
	case "c":
		if e, ok := m.current(entries); ok {
			m.pending = []types.FileEntry{e}
			m.state = "confirm"
		}
	}
	return m, nil
}

// handleConfirmKey deletes the pending entries on y or enter. Any other
// answer returns to the listing with nothing removed.
func (m Model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	pending := m.pending
	m.pending = nil

	switch key {
	case "y", "Y", "enter":
		if len(pending) == 0 {
			m.state = "cleanup"
			return m, nil
		}
		m.state = "cleaning"
		if len(pending) == 1 {
			m.message = fmt.Sprintf("Deleting %s...", pending[0].Name)
		} else {
			m.message = fmt.Sprintf("Deleting %d marked items...", len(pending))
		}
		return m, tea.Batch(m.spinner.Tick, performDelete(m.deps.Sizer, pending, m.deps.Log))
	case "n", "N", "esc", "q":
		m.state = "cleanup"
		return m, nil
	}

	// ignore stray keys, keep asking
	m.pending = pending
	return m, nil
}

func (m Model) open(dir string) (tea.Model, tea.Cmd) {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	job := m.deps.View.Open(m.deps.Ctx, dir)
	m.state = "cleanup"
	m.err = nil
	m.message = ""
	m.resetCursor()
	return m, tea.Batch(m.spinner.Tick, runJob(job))
}

func (m *Model) current(entries []types.FileEntry) (types.FileEntry, bool) {
	if m.choice < 0 || m.choice >= len(entries) {
		return types.FileEntry{}, false
	}
	return entries[m.choice], true
}

func (m *Model) resetCursor() {
	m.choice = 0
	m.offset = 0
	m.cursorPath = ""
}

func (m *Model) moveCursor(entries []types.FileEntry, delta int) {
	if len(entries) == 0 {
		m.resetCursor()
		return
	}
	m.choice = clamp(m.choice+delta, 0, len(entries)-1)
	m.cursorPath = entries[m.choice].Path
	m.adjustOffset(len(entries))
}

// syncCursor keeps the cursor on the same entry after the table was
// re-sorted or shrunk
func (m *Model) syncCursor() {
	entries := m.deps.View.Snapshot().Entries
	if len(entries) == 0 {
		m.resetCursor()
		return
	}
	// the cursor only follows an entry once the user has moved it
	if m.cursorPath == "" {
		m.choice = clamp(m.choice, 0, len(entries)-1)
		m.adjustOffset(len(entries))
		return
	}
	found := false
	for i, e := range entries {
		if e.Path == m.cursorPath {
			m.choice = i
			found = true
			break
		}
	}
	if !found {
		m.choice = clamp(m.choice, 0, len(entries)-1)
		m.cursorPath = entries[m.choice].Path
	}
	m.adjustOffset(len(entries))
}

func (m *Model) adjustOffset(n int) {
	height := m.viewportHeight()
	if m.choice < m.offset {
		m.offset = m.choice
	}
	if m.choice >= m.offset+height {
		m.offset = m.choice - height + 1
	}
	m.offset = clamp(m.offset, 0, max(0, n-height))
}

func (m Model) viewportHeight() int {
	// account for header, footer and padding
	return max(5, m.height-17)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
