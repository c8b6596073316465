package types

import (
	"fmt"
	"strings"
	"time"
)

// SizeNotComputed marks a FileEntry whose size has not been resolved yet
const SizeNotComputed int64 = -1

// FileEntry represents a single file or directory in the cleanup table
type FileEntry struct {
	Path     string
	Name     string
	IsDir    bool
	Size     int64
	ModTime  time.Time
	Selected bool
}

// SizeKnown reports whether the size sentinel has been replaced
func (e FileEntry) SizeKnown() bool {
	return e.Size != SizeNotComputed
}

// ScanProgress tracks one sizing run
type ScanProgress struct {
	Total     int
	Completed int
	MaxSize   int64
}

// Percent returns completion in the range [0, 1]
func (p ScanProgress) Percent() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Done reports whether every entry has been sized
func (p ScanProgress) Done() bool {
	return p.Completed >= p.Total
}

// SortKey selects the column the cleanup table is ordered by
type SortKey int

const (
	SortBySize SortKey = iota
	SortByName
	SortByModified
)

func (k SortKey) String() string {
	switch k {
	case SortByName:
		return "name"
	case SortByModified:
		return "modified"
	default:
		return "size"
	}
}

// Next cycles name -> size -> modified -> name
func (k SortKey) Next() SortKey {
	switch k {
	case SortByName:
		return SortBySize
	case SortBySize:
		return SortByModified
	default:
		return SortByName
	}
}

// ParseSortKey accepts "name", "size" or "modified"
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case "size", "":
		return SortBySize, nil
	case "name":
		return SortByName, nil
	case "modified", "mtime":
		return SortByModified, nil
	default:
		return SortBySize, fmt.Errorf("unknown sort key: %s", s)
	}
}

// SortDirection is ascending or descending
type SortDirection int

const (
	Descending SortDirection = iota
	Ascending
)

func (d SortDirection) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Reverse flips the direction
func (d SortDirection) Reverse() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// TimerState is the durable state of one named timer
type TimerState struct {
	Name         string
	IntervalDays int
	LastReset    time.Time // midnight, local time
}
