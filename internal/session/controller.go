package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// Controller runs jobs on goroutines and serialises every change to its View
// behind one mutex. It is the host used outside the terminal UI.
type Controller struct {
	mu         sync.Mutex
	ctx        context.Context
	view       *View
	sizer      *scanner.Sizer
	log        *logger.Logger
	onSnapshot func(Snapshot)
	wg         sync.WaitGroup
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// OnSnapshot registers fn to receive a snapshot after every change. fn runs
// with the controller lock held and must not call back into the controller.
func OnSnapshot(fn func(Snapshot)) ControllerOption {
	return func(c *Controller) {
		c.onSnapshot = fn
	}
}

// NewController creates a controller whose jobs stop when ctx is done
func NewController(ctx context.Context, lister *scanner.Lister, sizer *scanner.Sizer, log *logger.Logger, opts ...ControllerOption) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	v := NewView(lister, sizer, log)
	c := &Controller{
		ctx:   ctx,
		view:  v,
		sizer: v.sizer,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open starts a session on dir
func (c *Controller) Open(dir string) {
	c.mu.Lock()
	job := c.view.Open(c.ctx, dir)
	c.publishLocked()
	c.mu.Unlock()

	c.run(job)
}

// NavigateInto opens a directory row of the current table
func (c *Controller) NavigateInto(path string) error {
	c.mu.Lock()
	job, err := c.view.NavigateInto(c.ctx, path)
	if err == nil {
		c.publishLocked()
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.run(job)
	return nil
}

// NavigateUp opens the parent directory; it reports false at the root
func (c *Controller) NavigateUp() bool {
	c.mu.Lock()
	job := c.view.NavigateUp(c.ctx)
	if job != nil {
		c.publishLocked()
	}
	c.mu.Unlock()

	if job == nil {
		return false
	}
	c.run(job)
	return true
}

// Cancel stops the running job
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.view.Cancel() {
		return false
	}
	c.publishLocked()
	return true
}

func (c *Controller) SetSort(key types.SortKey, dir types.SortDirection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetSort(key, dir)
	c.publishLocked()
}

func (c *Controller) ToggleSelect(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	selected := c.view.ToggleSelect(path)
	c.publishLocked()
	return selected
}

func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SelectAll()
	c.publishLocked()
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.ClearSelection()
	c.publishLocked()
}

// Delete removes paths from disk and from the table. Entries whose size is
// already known are not walked again. Paths that fail stay in the table and
// their errors are joined.
func (c *Controller) Delete(paths ...string) (int64, error) {
	c.mu.Lock()
	known := make(map[string]int64, len(paths))
	for _, p := range paths {
		if e, ok := c.view.Entry(p); ok && e.SizeKnown() {
			known[p] = e.Size
		}
	}
	c.mu.Unlock()

	var (
		freed   int64
		removed []string
		errs    []error
	)
	for _, p := range paths {
		sizer := c.sizer
		if _, ok := known[p]; ok {
			sizer = nil
		}
		n, err := scanner.Remove(p, sizer)
		if err != nil {
			c.log.Error("failed to delete", err, logger.Field{Key: "path", Value: p})
			errs = append(errs, fmt.Errorf("delete %s: %w", p, err))
			continue
		}
		if size, ok := known[p]; ok {
			n = size
		}
		freed += n
		removed = append(removed, p)
	}

	c.mu.Lock()
	c.view.Remove(removed...)
	c.publishLocked()
	c.mu.Unlock()

	c.log.Info("deleted entries",
		logger.Field{Key: "count", Value: len(removed)},
		logger.Field{Key: "freed", Value: freed})
	return freed, errors.Join(errs...)
}

// Snapshot returns a copy of the current view
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Snapshot()
}

// Wait blocks until every started job has returned
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) run(job *Job) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		job.Run(c.apply)
	}()
}

func (c *Controller) apply(msg Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.Apply(msg) {
		c.publishLocked()
	}
}

func (c *Controller) publishLocked() {
	if c.onSnapshot != nil {
		c.onSnapshot(c.view.Snapshot())
	}
}
