// Package storage owns atomic read/write of the task collection file.
//
// The backing file is the single source of truth and Storage is its sole
// writer. No state is cached across calls, so every Load reflects the
// file's current on-disk content. Access is assumed single-process: the
// load-append-save sequence in AddTask is not serialized against other
// processes, and concurrent writers end up last-writer-wins on the whole
// file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/task"
)

// FormatVersion is the version tag written to every task file.
const FormatVersion = "1.0"

// document is the on-disk file shape.
type document struct {
	Version string           `json:"version"`
	Updated string           `json:"updated"`
	Tasks   []map[string]any `json:"tasks"`
}

// Storage reads and writes the task collection at a fixed path.
type Storage struct {
	path       string
	schemaPath string
	clock      task.Clock
	logger     *log.Logger

	// rename is swapped in tests to simulate an interrupted replace.
	rename func(oldpath, newpath string) error
}

// Option configures a Storage.
type Option func(*Storage)

// WithSchemaFile enables JSON Schema validation of loaded files. A schema
// path that does not exist is skipped, not an error.
func WithSchemaFile(path string) Option {
	return func(s *Storage) { s.schemaPath = path }
}

// WithClock overrides the time source used for the updated timestamp.
func WithClock(c task.Clock) Option {
	return func(s *Storage) { s.clock = c }
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Storage) { s.logger = l }
}

// New creates a Storage for the given path.
func New(path string, opts ...Option) *Storage {
	s := &Storage{
		path:   path,
		clock:  task.UTCClock,
		logger: log.Default(),
		rename: os.Rename,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Storage) Path() string {
	return s.path
}

// Load reads all tasks from the backing file, in file order. A missing
// file is a normal first-run state and yields an empty slice. Failures:
// *IOError when the file exists but cannot be read, *CorruptDataError
// when the content is not valid JSON, *SchemaError when the document is
// not an object or lacks a "tasks" key. Individual task records are
// decoded tolerantly and never fail the load.
func (s *Storage) Load() ([]task.Task, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []task.Task{}, nil
		}
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &CorruptDataError{Path: s.path, Err: err}
	}

	doc, ok := parsed.(map[string]any)
	if !ok {
		return nil, &SchemaError{Path: s.path, Reason: "top-level value is not an object"}
	}
	rawTasks, ok := doc["tasks"]
	if !ok {
		return nil, &SchemaError{Path: s.path, Reason: `missing "tasks" key`}
	}
	items, ok := rawTasks.([]any)
	if !ok {
		return nil, &SchemaError{Path: s.path, Reason: `"tasks" is not an array`}
	}

	if err := s.validateSchema(parsed); err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(items))
	for _, item := range items {
		record, _ := item.(map[string]any)
		tasks = append(tasks, task.FromMap(record, task.WithClock(s.clock)))
	}
	return tasks, nil
}

// Save atomically replaces the backing file with the given tasks. The
// serialized collection is written to a sibling temporary file, forced
// to stable storage, and renamed onto the real path, so a crash at any
// point leaves the file either fully intact or fully replaced. On
// failure the real path is untouched and the temporary file is removed.
func (s *Storage) Save(tasks []task.Task) error {
	doc := document{
		Version: FormatVersion,
		Updated: s.clock().Format(time.RFC3339),
		Tasks:   make([]map[string]any, 0, len(tasks)),
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, t.ToMap())
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')

	return s.writeFileAtomic(data)
}

// AddTask loads the current collection, appends the task, and saves the
// whole collection back. Not serialized against other processes; see the
// package comment.
func (s *Storage) AddTask(t task.Task) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(tasks, t))
}

// GetTaskByID returns the first task with the given id, or nil if no
// task matches. Uniqueness is not enforced; on colliding ids the first
// in file order wins.
func (s *Storage) GetTaskByID(id string) (*task.Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

func (s *Storage) writeFileAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := s.rename(tmpName, s.path); err != nil {
		return &IOError{Op: "replace", Path: s.path, Err: err}
	}
	committed = true

	// Best-effort durability for the rename itself.
	if err := fsyncDir(dir); err != nil {
		s.logger.Debug("directory sync failed", "dir", dir, "err", err)
	}
	return nil
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
