package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rahulvramesh/pchelper/internal/errorlog"
	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// Deps are the components the UI drives
type Deps struct {
	Ctx    context.Context
	View   *session.View
	Sizer  *scanner.Sizer
	Errors *errorlog.Store
	// Timers returns the current state of every scheduled timer
	Timers func() []types.TimerState
	Root   string
	Log    *logger.Logger
}

// Model represents the application state
type Model struct {
	deps Deps

	state      string // "menu", "cleanup", "cleaning", "errors", "timers"
	menuChoice int
	spinner    spinner.Model
	progress   progress.Model
	table      table.Model
	width      int
	height     int
	err        error
	message    string
	notice     string

	// cleanup view fields
	choice     int
	offset     int
	cursorPath string
	startDir   string

	// entries waiting for the delete confirmation
	pending []types.FileEntry
}

// InitialModel creates the model. A non-empty startDir opens the cleanup
// view on that directory immediately.
func InitialModel(deps Deps, startDir string) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.View == nil {
		deps.View = session.NewView(nil, deps.Sizer, deps.Log)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		deps:     deps,
		state:    "menu",
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		startDir: startDir,
	}
}

// Init starts the spinner and, when requested, the first cleanup session
func (m Model) Init() tea.Cmd {
	if m.startDir == "" {
		return m.spinner.Tick
	}
	return tea.Batch(m.spinner.Tick, openDirCmd(m.startDir))
}
