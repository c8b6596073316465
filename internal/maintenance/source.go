package maintenance

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds one event-log command run
const DefaultTimeout = 60 * time.Second

// CommandSource runs an external command and treats each non-blank stdout
// line as one critical error. The command itself is configured by the host.
type CommandSource struct {
	Argv    []string
	Timeout time.Duration
}

// NewCommandSource creates a source from argv
func NewCommandSource(argv []string, timeout time.Duration) *CommandSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandSource{Argv: argv, Timeout: timeout}
}

func (c *CommandSource) ScanForCriticalErrors(ctx context.Context) ([]string, error) {
	if len(c.Argv) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("event log command timed out after %s", c.Timeout)
		}
		return nil, fmt.Errorf("event log command %q: %w: %s", c.Argv[0], err, strings.TrimSpace(stderr.String()))
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
