package utils

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rahulvramesh/pchelper/internal/types"
)

// TruncatePath truncates a path if it's too long
func TruncatePath(path string, maxLen int) string {
	if maxLen < 4 || len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// TruncatePathLeft keeps the tail of a long path
func TruncatePathLeft(path string, maxLen int) string {
	if maxLen < 4 || len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-(maxLen-3):]
}

// FormatFileSize formats file size using humanize
func FormatFileSize(size int64) string {
	if size == types.SizeNotComputed {
		return "…"
	}
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

// FormatAge renders a modification time relative to now
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
