package session

import (
	"context"

	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// Msg is produced by a Job and applied to a View. Gen ties it to the Open
// call that started the job.
type Msg interface {
	Generation() uint64
}

// ListedMsg carries the directory listing
type ListedMsg struct {
	Gen     uint64
	Dir     string
	Entries []types.FileEntry
}

// SizedMsg carries one computed size
type SizedMsg struct {
	Gen      uint64
	Index    int
	Path     string
	Size     int64
	Progress types.ScanProgress
}

// DoneMsg reports that every entry was sized
type DoneMsg struct {
	Gen uint64
}

// CancelledMsg reports that the job stopped early
type CancelledMsg struct {
	Gen uint64
}

func (m ListedMsg) Generation() uint64    { return m.Gen }
func (m SizedMsg) Generation() uint64     { return m.Gen }
func (m DoneMsg) Generation() uint64      { return m.Gen }
func (m CancelledMsg) Generation() uint64 { return m.Gen }

// Job is the background half of a session. It lists and sizes one directory
// and reports through emit; it never touches the View.
type Job struct {
	Gen uint64
	Dir string

	ctx    context.Context
	lister *scanner.Lister
	sizer  *scanner.Sizer
}

// Run executes the job. emit is called from the calling goroutine only, in
// order: ListedMsg, zero or more SizedMsg, then DoneMsg or CancelledMsg.
func (j *Job) Run(emit func(Msg)) {
	if j.ctx.Err() != nil {
		emit(CancelledMsg{Gen: j.Gen})
		return
	}

	entries := j.lister.List(j.Dir)
	if j.ctx.Err() != nil {
		emit(CancelledMsg{Gen: j.Gen})
		return
	}
	emit(ListedMsg{Gen: j.Gen, Dir: j.Dir, Entries: append([]types.FileEntry(nil), entries...)})

	err := j.sizer.ComputeSizes(j.ctx, entries, func(i int, size int64, p types.ScanProgress) {
		emit(SizedMsg{Gen: j.Gen, Index: i, Path: entries[i].Path, Size: size, Progress: p})
	})
	if err != nil {
		emit(CancelledMsg{Gen: j.Gen})
		return
	}
	emit(DoneMsg{Gen: j.Gen})
}

// Cancelled reports whether the job's context is done
func (j *Job) Cancelled() bool {
	return j.ctx.Err() != nil
}
