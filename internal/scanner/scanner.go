package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// Lister lists the direct, non-hidden children of a directory
type Lister struct {
	excludes []string
	log      *logger.Logger
}

// NewLister creates a lister. Exclude patterns are doublestar globs matched
// against entry names.
func NewLister(excludes []string, log *logger.Logger) *Lister {
	if log == nil {
		log = logger.Nop()
	}
	valid := make([]string, 0, len(excludes))
	for _, p := range excludes {
		if !doublestar.ValidatePattern(p) {
			log.Warn("ignoring invalid exclude pattern", logger.Field{Key: "pattern", Value: p})
			continue
		}
		valid = append(valid, p)
	}
	return &Lister{excludes: valid, log: log}
}

// List returns one stub per child with Size set to SizeNotComputed.
// A missing, unreadable or non-directory path yields an empty slice.
func (l *Lister) List(dir string) []types.FileEntry {
	entries := []types.FileEntry{}
	if dir == "" {
		return entries
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return entries
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return entries
	}

	children, err := os.ReadDir(abs)
	if err != nil {
		l.log.Debug("failed to read directory", logger.Field{Key: "path", Value: abs}, logger.Field{Key: "error", Value: err})
		return entries
	}

	for _, child := range children {
		path := filepath.Join(abs, child.Name())
		if isHidden(path, child) || l.isExcluded(child.Name()) {
			continue
		}

		// os.Stat follows links so a linked directory can still be navigated into
		var isDir bool
		var entry types.FileEntry
		if fi, err := os.Stat(path); err == nil {
			isDir = fi.IsDir()
			entry.ModTime = fi.ModTime()
		} else if fi, err := child.Info(); err == nil {
			entry.ModTime = fi.ModTime()
		}

		entry.Path = path
		entry.Name = child.Name()
		entry.IsDir = isDir
		entry.Size = types.SizeNotComputed
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

func (l *Lister) isExcluded(name string) bool {
	for _, pattern := range l.excludes {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// Remove deletes a file or directory tree and returns the bytes it occupied
func Remove(path string, sizer *Sizer) (int64, error) {
	var freed int64
	if sizer != nil {
		freed = sizer.ComputeSize(path)
	}
	if err := os.RemoveAll(path); err != nil {
		return 0, err
	}
	return freed, nil
}
