package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulvramesh/pchelper/internal/errorlog"
	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/types"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small"), 10)
	writeFile(t, filepath.Join(root, "folder", "a"), 200)
	writeFile(t, filepath.Join(root, "large"), 3000)
	return root
}

func newModel(t *testing.T) Model {
	t.Helper()
	sizer := scanner.NewSizer()
	return InitialModel(Deps{
		Ctx:   context.Background(),
		View:  session.NewView(scanner.NewLister(nil, nil), sizer, nil),
		Sizer: sizer,
	}, "")
}

// pump runs cmd and every command it leads to, feeding results back into
// Update. Spinner ticks are dropped so the loop ends.
func pump(m tea.Model, cmd tea.Cmd) tea.Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

func send(m tea.Model, msg tea.Msg) tea.Model {
	m, cmd := m.Update(msg)
	return pump(m, cmd)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func names(entries []types.FileEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func snapshot(m tea.Model) session.Snapshot {
	return m.(Model).deps.View.Snapshot()
}

func TestModel_OpenSizesDirectory(t *testing.T) {
	root := fixture(t)
	var m tea.Model = newModel(t)

	m = send(m, openDirMsg{Dir: root})

	snap := snapshot(m)
	assert.Equal(t, "cleanup", m.(Model).state)
	assert.Equal(t, session.Ready, snap.State)
	assert.Equal(t, []string{"large", "folder", "small"}, names(snap.Entries))
	assert.Contains(t, m.View(), "3 items sized")
}

func TestModel_SecondOpenWins(t *testing.T) {
	x := fixture(t)
	y := t.TempDir()
	writeFile(t, filepath.Join(y, "only-in-y"), 5)

	var m tea.Model = newModel(t)
	m, cmdX := m.Update(openDirMsg{Dir: x})
	m, cmdY := m.Update(openDirMsg{Dir: y})
	m = pump(m, cmdX)
	m = pump(m, cmdY)

	snap := snapshot(m)
	assert.Equal(t, session.Ready, snap.State)
	assert.Equal(t, []string{"only-in-y"}, names(snap.Entries))
}

func TestModel_NavigateAndSort(t *testing.T) {
	root := fixture(t)
	var m tea.Model = newModel(t)
	m = send(m, openDirMsg{Dir: root})

	// cursor starts on "large"; move to "folder" and open it
	m = send(m, key("down"))
	require.Equal(t, filepath.Join(root, "folder"), m.(Model).cursorPath)
	m = send(m, key("enter"))
	assert.Equal(t, filepath.Join(root, "folder"), snapshot(m).Dir)
	assert.Equal(t, []string{"a"}, names(snapshot(m).Entries))

	m = send(m, key("backspace"))
	assert.Equal(t, root, snapshot(m).Dir)

	m = send(m, key("s"))
	assert.Equal(t, types.SortByModified, snapshot(m).SortKey)
	m = send(m, key("s"))
	m = send(m, key("r"))
	snap := snapshot(m)
	assert.Equal(t, types.SortByName, snap.SortKey)
	assert.Equal(t, types.Ascending, snap.SortDir)
	assert.Equal(t, []string{"folder", "large", "small"}, names(snap.Entries))
}

func TestModel_DeleteMarked(t *testing.T) {
	root := fixture(t)
	var m tea.Model = newModel(t)
	m = send(m, openDirMsg{Dir: root})

	m = send(m, key(" "))
	assert.Equal(t, 1, snapshot(m).SelectedCount())
	m = send(m, key("D"))
	require.Equal(t, "confirm", m.(Model).state)
	assert.FileExists(t, filepath.Join(root, "large"))
	assert.Contains(t, m.View(), "cannot be undone")
	assert.Contains(t, m.View(), "3.0 kB")

	m = send(m, key("y"))

	assert.NoFileExists(t, filepath.Join(root, "large"))
	snap := snapshot(m)
	assert.Equal(t, []string{"folder", "small"}, names(snap.Entries))
	assert.Equal(t, int64(200), snap.Entries[0].Size)
	assert.Equal(t, "cleanup", m.(Model).state)
	assert.Contains(t, m.(Model).message, "Deleted 1 items")
}

func TestModel_DeleteDeclined(t *testing.T) {
	for _, answer := range []string{"n", "esc"} {
		t.Run(answer, func(t *testing.T) {
			root := fixture(t)
			var m tea.Model = newModel(t)
			m = send(m, openDirMsg{Dir: root})

			m = send(m, key("c"))
			require.Equal(t, "confirm", m.(Model).state)
			m = send(m, key(answer))

			assert.Equal(t, "cleanup", m.(Model).state)
			assert.Empty(t, m.(Model).pending)
			assert.FileExists(t, filepath.Join(root, "large"))
			assert.Equal(t, []string{"large", "folder", "small"}, names(snapshot(m).Entries))
		})
	}
}

func TestModel_DeleteCurrentConfirmed(t *testing.T) {
	root := fixture(t)
	var m tea.Model = newModel(t)
	m = send(m, openDirMsg{Dir: root})

	m = send(m, key("c"))
	m = send(m, key("x"))
	require.Equal(t, "confirm", m.(Model).state)
	m = send(m, key("enter"))

	assert.NoFileExists(t, filepath.Join(root, "large"))
	assert.Equal(t, []string{"folder", "small"}, names(snapshot(m).Entries))
}

func TestModel_EscCancelsThenLeaves(t *testing.T) {
	root := fixture(t)
	var m tea.Model = newModel(t)

	// open without running the job so the session stays active
	m, _ = m.Update(openDirMsg{Dir: root})
	require.Equal(t, session.Listing, snapshot(m).State)

	m = send(m, key("esc"))
	assert.Equal(t, session.Cancelled, snapshot(m).State)
	assert.Equal(t, "cleanup", m.(Model).state)

	m = send(m, key("esc"))
	assert.Equal(t, "menu", m.(Model).state)
}

func TestModel_Notifications(t *testing.T) {
	var m tea.Model = newModel(t)

	m = send(m, ReminderMsg{IntervalDays: 30})
	assert.Contains(t, m.View(), "30 days")

	m = send(m, CriticalErrorsMsg{Lines: []string{"a", "b"}})
	assert.Contains(t, m.View(), "2 critical errors")
}

func TestModel_ErrorLogView(t *testing.T) {
	store := errorlog.NewStore(t.TempDir(), nil)
	require.NoError(t, store.Load())
	require.NoError(t, store.Append("Event 41: Kernel-Power", "Event 6008: unexpected shutdown"))

	model := newModel(t)
	model.deps.Errors = store
	var m tea.Model = model

	m = send(m, key("down"))
	m = send(m, key("enter"))

	assert.Equal(t, "errors", m.(Model).state)
	rows := m.(Model).table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Event 6008: unexpected shutdown", rows[0][1])

	m = send(m, key("q"))
	assert.Equal(t, "menu", m.(Model).state)
}

func TestModel_TimersView(t *testing.T) {
	model := newModel(t)
	model.deps.Timers = func() []types.TimerState {
		return []types.TimerState{{Name: "manage", IntervalDays: 30}}
	}
	model.menuChoice = 2
	var m tea.Model = model

	m = send(m, key("enter"))

	assert.Equal(t, "timers", m.(Model).state)
	require.Len(t, m.(Model).table.Rows(), 1)
	assert.Equal(t, "manage", m.(Model).table.Rows()[0][0])
}
