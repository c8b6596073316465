package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/types"
)

var (
	ErrNotFound     = errors.New("entry not found")
	ErrNotDirectory = errors.New("entry is not a directory")
)

// Snapshot is a read-only copy of the view for rendering
type Snapshot struct {
	Dir        string
	State      State
	Entries    []types.FileEntry
	Progress   types.ScanProgress
	SortKey    types.SortKey
	SortDir    types.SortDirection
	Generation uint64
}

// SelectedSize sums the known sizes of selected entries
func (s Snapshot) SelectedSize() int64 {
	var total int64
	for _, e := range s.Entries {
		if e.Selected && e.SizeKnown() {
			total += e.Size
		}
	}
	return total
}

// SelectedCount returns the number of selected entries
func (s Snapshot) SelectedCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Selected {
			n++
		}
	}
	return n
}

// View owns the table of one cleanup session. It is not safe for concurrent
// use; the host applies job messages from a single goroutine (the bubbletea
// Update loop or a Controller).
type View struct {
	lister *scanner.Lister
	sizer  *scanner.Sizer
	log    *logger.Logger

	dir      string
	state    State
	entries  []types.FileEntry
	progress types.ScanProgress
	sortKey  types.SortKey
	sortDir  types.SortDirection

	gen    uint64
	cancel context.CancelFunc
}

// NewView creates an idle view sorted by size, largest first
func NewView(lister *scanner.Lister, sizer *scanner.Sizer, log *logger.Logger) *View {
	if log == nil {
		log = logger.Nop()
	}
	if lister == nil {
		lister = scanner.NewLister(nil, log)
	}
	if sizer == nil {
		sizer = scanner.NewSizer(scanner.WithLogger(log))
	}
	return &View{
		lister:  lister,
		sizer:   sizer,
		log:     log,
		state:   Idle,
		sortKey: types.SortBySize,
		sortDir: types.Descending,
	}
}

// Open cancels any running job, clears the table and returns the job that
// lists and sizes dir. The caller runs it.
func (v *View) Open(ctx context.Context, dir string) *Job {
	v.Cancel()
	if v.cancel != nil {
		v.cancel()
	}

	if abs, err := filepath.Abs(dir); err == nil && dir != "" {
		dir = abs
	}

	v.gen++
	v.dir = dir
	v.entries = nil
	v.progress = types.ScanProgress{}
	v.state, _ = Transition(v.state, EventOpen)

	jobCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	v.log.Debug("session opened",
		logger.Field{Key: "dir", Value: dir},
		logger.Field{Key: "generation", Value: v.gen})

	return &Job{Gen: v.gen, Dir: dir, ctx: jobCtx, lister: v.lister, sizer: v.sizer}
}

// Cancel stops the running job. Sizes already received stay in the table.
// It reports false when nothing was running.
func (v *View) Cancel() bool {
	next, err := Transition(v.state, EventCancel)
	if err != nil {
		return false
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.state = next
	v.log.Debug("session cancelled",
		logger.Field{Key: "dir", Value: v.dir},
		logger.Field{Key: "sized", Value: v.progress.Completed})
	return true
}

// Apply folds a job message into the view. Messages from an earlier Open
// and messages the current state does not accept are dropped; the return
// value reports whether the view changed.
func (v *View) Apply(msg Msg) bool {
	if msg == nil || msg.Generation() != v.gen {
		return false
	}

	switch m := msg.(type) {
	case ListedMsg:
		next, err := Transition(v.state, EventListed)
		if err != nil {
			return false
		}
		v.state = next
		v.entries = append([]types.FileEntry(nil), m.Entries...)
		v.progress = types.ScanProgress{Total: len(v.entries)}
		v.sort()
		return true

	case SizedMsg:
		if v.state != SizingInProgress {
			return false
		}
		v.progress = m.Progress
		i := v.indexOf(m.Path)
		if i < 0 || v.entries[i].SizeKnown() {
			return true
		}
		v.entries[i].Size = m.Size
		if v.sortKey == types.SortBySize {
			v.sort()
		}
		return true

	case DoneMsg:
		next, err := Transition(v.state, EventSizingDone)
		if err != nil {
			return false
		}
		v.state = next
		if v.cancel != nil {
			v.cancel()
		}
		return true

	case CancelledMsg:
		next, err := Transition(v.state, EventCancel)
		if err != nil {
			return false
		}
		v.state = next
		return true
	}
	return false
}

// SetSort reorders the table. The choice survives navigation.
func (v *View) SetSort(key types.SortKey, dir types.SortDirection) {
	v.sortKey = key
	v.sortDir = dir
	v.sort()
}

// NavigateInto opens a directory entry of the current table
func (v *View) NavigateInto(ctx context.Context, path string) (*Job, error) {
	i := v.indexOf(path)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !v.entries[i].IsDir {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return v.Open(ctx, path), nil
}

// NavigateUp opens the parent directory. It returns nil at the filesystem root.
func (v *View) NavigateUp(ctx context.Context) *Job {
	if v.dir == "" {
		return nil
	}
	parent := filepath.Dir(v.dir)
	if parent == v.dir {
		return nil
	}
	return v.Open(ctx, parent)
}

// ToggleSelect flips the selection of path and returns the new value
func (v *View) ToggleSelect(path string) bool {
	i := v.indexOf(path)
	if i < 0 {
		return false
	}
	v.entries[i].Selected = !v.entries[i].Selected
	return v.entries[i].Selected
}

func (v *View) SelectAll() {
	for i := range v.entries {
		v.entries[i].Selected = true
	}
}

func (v *View) ClearSelection() {
	for i := range v.entries {
		v.entries[i].Selected = false
	}
}

// Selected returns the selected entries in table order
func (v *View) Selected() []types.FileEntry {
	var out []types.FileEntry
	for _, e := range v.entries {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}

// Remove drops paths from the table without touching the filesystem or
// re-sizing the remaining entries. It returns how many rows were removed.
func (v *View) Remove(paths ...string) int {
	if len(paths) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		drop[p] = struct{}{}
	}

	kept := v.entries[:0]
	removed := 0
	for _, e := range v.entries {
		if _, ok := drop[e.Path]; ok {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	v.entries = kept
	return removed
}

// Entry returns the entry for path
func (v *View) Entry(path string) (types.FileEntry, bool) {
	i := v.indexOf(path)
	if i < 0 {
		return types.FileEntry{}, false
	}
	return v.entries[i], true
}

func (v *View) State() State { return v.state }

func (v *View) Dir() string { return v.dir }

func (v *View) Generation() uint64 { return v.gen }

func (v *View) Len() int { return len(v.entries) }

// Snapshot copies the current view
func (v *View) Snapshot() Snapshot {
	return Snapshot{
		Dir:        v.dir,
		State:      v.state,
		Entries:    append([]types.FileEntry(nil), v.entries...),
		Progress:   v.progress,
		SortKey:    v.sortKey,
		SortDir:    v.sortDir,
		Generation: v.gen,
	}
}

func (v *View) indexOf(path string) int {
	for i := range v.entries {
		if v.entries[i].Path == path {
			return i
		}
	}
	return -1
}

func (v *View) sort() {
	SortEntries(v.entries, v.sortKey, v.sortDir)
}

// SortEntries orders entries in place. For the size key, entries whose size
// is still unknown always go last regardless of direction. Ties fall back to
// the name.
func SortEntries(entries []types.FileEntry, key types.SortKey, dir types.SortDirection) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		if key == types.SortBySize && a.SizeKnown() != b.SizeKnown() {
			return a.SizeKnown()
		}

		var cmp int
		switch key {
		case types.SortBySize:
			cmp = compareInt64(a.Size, b.Size)
		case types.SortByModified:
			cmp = a.ModTime.Compare(b.ModTime)
		default:
			cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if cmp == 0 {
			return a.Name < b.Name
		}
		if dir == types.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
