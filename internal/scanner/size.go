package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/metrics"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// ProgressSink receives one result per sized entry. Calls are never concurrent.
type ProgressSink func(index int, size int64, progress types.ScanProgress)

// Sizer computes file and directory sizes.
//
// Symbolic links to directories are never descended into, at any depth, so
// link cycles cannot recurse forever. A link to a regular file counts the
// target's length. Errors on individual children are logged and count as 0.
type Sizer struct {
	log     *logger.Logger
	metrics *metrics.Metrics
	workers int
}

// Option configures a Sizer
type Option func(*Sizer)

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(s *Sizer) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sizer) { s.metrics = m }
}

// WithWorkers sizes up to n top-level entries concurrently. n <= 1 keeps
// strict input order. With n > 1 results arrive in completion order, not
// input order; callers that need a fixed order must sort.
func WithWorkers(n int) Option {
	return func(s *Sizer) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// NewSizer creates a new sizer
func NewSizer(opts ...Option) *Sizer {
	s := &Sizer{log: logger.Nop(), workers: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeSize returns the size of a file or directory tree
func (s *Sizer) ComputeSize(path string) int64 {
	size, _ := s.ComputeSizeContext(context.Background(), path)
	return size
}

// ComputeSizeContext is ComputeSize with cancellation checked before every
// directory read. On cancellation the partial total is discarded.
func (s *Sizer) ComputeSizeContext(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		s.childError(path, err)
		return 0, nil
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return s.linkSize(path), nil
	case info.IsDir():
		size, err := s.dirSize(ctx, path)
		if err != nil {
			return 0, err
		}
		return size, nil
	case info.Mode().IsRegular():
		return info.Size(), nil
	default:
		return 0, nil
	}
}

func (s *Sizer) dirSize(ctx context.Context, dir string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		s.childError(dir, err)
		return 0, nil
	}

	var total int64
	for _, child := range children {
		path := filepath.Join(dir, child.Name())
		mode := child.Type()

		switch {
		case mode&fs.ModeSymlink != 0:
			total += s.linkSize(path)
		case mode.IsDir():
			size, err := s.dirSize(ctx, path)
			if err != nil {
				return 0, err
			}
			total += size
		default:
			info, err := child.Info()
			if err != nil {
				s.childError(path, err)
				continue
			}
			if info.Mode().IsRegular() {
				total += info.Size()
			}
		}
	}

	return total, nil
}

// linkSize counts a link to a regular file by the target's length. Links to
// directories and broken links contribute 0.
func (s *Sizer) linkSize(path string) int64 {
	target, err := os.Stat(path)
	if err != nil {
		s.childError(path, err)
		return 0
	}
	if !target.Mode().IsRegular() {
		return 0
	}
	return target.Size()
}

func (s *Sizer) childError(path string, err error) {
	s.metrics.ChildError()
	s.log.Debug("skipping unreadable entry",
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "error", Value: err})
}

// ComputeSizes sizes entries and pushes (index, size) to sink as each one
// completes. Cancellation is checked between entries; once ctx is done no
// further results are pushed and ctx.Err() is returned.
func (s *Sizer) ComputeSizes(ctx context.Context, entries []types.FileEntry, sink ProgressSink) error {
	start := time.Now()
	defer func() { s.metrics.SizingFinished(time.Since(start)) }()

	progress := types.ScanProgress{Total: len(entries)}

	if s.workers <= 1 || len(entries) < 2 {
		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			size, err := s.ComputeSizeContext(ctx, entry.Path)
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			progress.Completed++
			if size > progress.MaxSize {
				progress.MaxSize = size
			}
			s.metrics.EntrySized()
			if sink != nil {
				sink(i, size, progress)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var mu sync.Mutex
	for i, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			size, err := s.ComputeSizeContext(gctx, entry.Path)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if err := ctx.Err(); err != nil {
				return err
			}
			progress.Completed++
			if size > progress.MaxSize {
				progress.MaxSize = size
			}
			s.metrics.EntrySized()
			if sink != nil {
				sink(i, size, progress)
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
