// Package timer keeps the durable "last reset" date of named maintenance timers.
package timer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const (
	// Subdirectory of the state dir holding one file per timer
	Subdirectory = "timers"

	// DateLayout is the on-disk calendar date format
	DateLayout = "2006-01-02"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Record is the persisted form of a timer
type Record struct {
	Name      string `json:"name"`
	LastReset string `json:"last_reset"`
}

// Store reads and writes timer records as JSON files
type Store struct {
	dir string
}

// NewStore creates a store rooted at <stateDir>/timers
func NewStore(stateDir string) *Store {
	return &Store{dir: filepath.Join(stateDir, Subdirectory)}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load returns the stored date for name. A missing file returns
// os.ErrNotExist; an unparsable one returns a wrapped error.
func (s *Store) Load(name string) (time.Time, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return time.Time{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return time.Time{}, fmt.Errorf("decode timer record %s: %w", name, err)
	}
	if rec.Name != name {
		return time.Time{}, fmt.Errorf("timer record %s has name %q", name, rec.Name)
	}

	date, err := time.ParseInLocation(DateLayout, rec.LastReset, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timer date %s: %w", name, err)
	}
	return date, nil
}

// Save writes the date for name atomically (temp file, sync, rename)
func (s *Store) Save(name string, date time.Time) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid timer name: %q", name)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create timer directory: %w", err)
	}

	data, err := json.Marshal(Record{Name: name, LastReset: date.Format(DateLayout)})
	if err != nil {
		return err
	}

	target := s.path(name)
	tmp := target + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create temporary timer file: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return fmt.Errorf("write timer file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync timer file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close timer file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("rename timer file: %w", err)
	}
	return nil
}
