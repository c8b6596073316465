// Package errorlog persists critical error lines captured by the error-scan
// timer. The log is append-only: order and duplicates are preserved.
package errorlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rahulvramesh/pchelper/internal/logger"
)

// Filename is the JSONL file inside the state directory
const Filename = "error_log.jsonl"

// Record is one persisted line
type Record struct {
	Line    string    `json:"line"`
	SavedAt time.Time `json:"saved_at"`
}

// recordJSON is the on-disk form. Lines that are not valid UTF-8 (system
// logs in a legacy code page) go to LineRaw as base64 so no byte is lost.
type recordJSON struct {
	Line    string    `json:"line"`
	LineRaw []byte    `json:"line_raw,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{Line: r.Line, SavedAt: r.SavedAt}
	if !utf8.ValidString(r.Line) {
		out.Line = string([]rune(r.Line))
		out.LineRaw = []byte(r.Line)
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Line = in.Line
	if in.LineRaw != nil {
		r.Line = string(in.LineRaw)
	}
	r.SavedAt = in.SavedAt
	return nil
}

// Store is an append-only error line log
type Store struct {
	filePath string
	log      *logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	records []Record
}

// NewStore creates a store at <stateDir>/error_log.jsonl. Call Load before use.
func NewStore(stateDir string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		filePath: filepath.Join(stateDir, Filename),
		log:      log,
		now:      time.Now,
	}
}

// Load reads every record. A missing file leaves the log empty. Lines that do
// not decode are skipped, and the salvaged records are written back. A line
// too long to read ends the load; records before it are kept.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.records = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer file.Close()

	var records []Record
	skipped := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			s.log.Warn("skipping corrupt error log line",
				logger.Field{Key: "file", Value: s.filePath},
				logger.Field{Key: "line", Value: lineNum})
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		// keep what was read before the bad line
		s.log.Error("error log truncated at unreadable line", err,
			logger.Field{Key: "file", Value: s.filePath},
			logger.Field{Key: "line", Value: lineNum + 1},
			logger.Field{Key: "kept", Value: len(records)})
		skipped++
	}

	s.records = records
	if skipped > 0 {
		if err := s.rewriteLocked(); err != nil {
			s.log.Error("failed to rewrite error log", err, logger.Field{Key: "file", Value: s.filePath})
		}
	}
	return nil
}

// Append adds lines in order. The in-memory log grows even when the write fails.
func (s *Store) Append(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var buf []byte
	for _, line := range lines {
		rec := Record{Line: line, SavedAt: now}
		s.records = append(s.records, rec)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("create error log directory: %w", err)
	}
	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open error log for append: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(buf); err != nil {
		return fmt.Errorf("append error log: %w", err)
	}

	s.log.Debug("error lines appended",
		logger.Field{Key: "count", Value: len(lines)},
		logger.Field{Key: "file", Value: s.filePath})
	return nil
}

// All returns a copy of every saved line, oldest first
func (s *Store) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]string, len(s.records))
	for i, rec := range s.records {
		lines[i] = rec.Line
	}
	return lines
}

// Records returns a copy of every saved record, oldest first
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Record(nil), s.records...)
}

// Len returns the number of saved lines
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) rewriteLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, rec := range s.records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
