package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rahulvramesh/pchelper/internal/types"
)

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", TruncatePath("short", 10))
	assert.Equal(t, "abcdefg...", TruncatePath("abcdefghijklmnop", 10))
	assert.Equal(t, "...jklmnop", TruncatePathLeft("abcdefghijklmnop", 10))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "…", FormatFileSize(types.SizeNotComputed))
	assert.Equal(t, "0 B", FormatFileSize(0))
	assert.Equal(t, "1.5 kB", FormatFileSize(1500))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "", FormatAge(time.Time{}))
	assert.Contains(t, FormatAge(time.Now().Add(-48*time.Hour)), "ago")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".pchelper"), ExpandHome("~/.pchelper"))
	assert.Equal(t, "/tmp/x", ExpandHome("/tmp/x"))
}
