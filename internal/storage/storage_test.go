package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nibzard/tasks-go/internal/task"
)

func mustNewTask(t *testing.T, description string, tags []string) task.Task {
	t.Helper()
	created, err := task.New(description, tags)
	if err != nil {
		t.Fatalf("task.New(%q) error = %v", description, err)
	}
	return created
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v, want nil", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Load() = %d tasks, want 0", len(tasks))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	want := []task.Task{
		mustNewTask(t, "First task", []string{"unit"}),
		mustNewTask(t, "Second task", nil),
		mustNewTask(t, "Third task", []string{"a", "b", "a"}),
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load() = %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("tasks[%d].ID = %q, want %q", i, got[i].ID, want[i].ID)
		}
		if got[i].Description != want[i].Description {
			t.Errorf("tasks[%d].Description = %q, want %q", i, got[i].Description, want[i].Description)
		}
		if got[i].Created != want[i].Created {
			t.Errorf("tasks[%d].Created = %q, want %q", i, got[i].Created, want[i].Created)
		}
		if got[i].Completed != want[i].Completed {
			t.Errorf("tasks[%d].Completed = %v, want %v", i, got[i].Completed, want[i].Completed)
		}
		if len(got[i].Tags) != len(want[i].Tags) {
			t.Fatalf("tasks[%d].Tags = %v, want %v", i, got[i].Tags, want[i].Tags)
		}
		for j := range want[i].Tags {
			if got[i].Tags[j] != want[i].Tags[j] {
				t.Errorf("tasks[%d].Tags[%d] = %q, want %q", i, j, got[i].Tags[j], want[i].Tags[j])
			}
		}
	}
}

func TestSaveWritesVersionAndUpdated(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := New(path, WithClock(func() time.Time { return fixed }))

	if err := s.Save([]task.Task{mustNewTask(t, "Test task", nil)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var doc struct {
		Version string           `json:"version"`
		Updated string           `json:"updated"`
		Tasks   []map[string]any `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if doc.Version != FormatVersion {
		t.Errorf("version = %q, want %q", doc.Version, FormatVersion)
	}
	if doc.Updated != "2025-06-01T12:00:00Z" {
		t.Errorf("updated = %q, want fixed timestamp", doc.Updated)
	}
	if len(doc.Tasks) != 1 {
		t.Errorf("tasks count = %d, want 1", len(doc.Tasks))
	}
	if raw[len(raw)-1] != '\n' {
		t.Error("saved file missing trailing newline")
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "tasks.json")
	s := New(path)

	if err := s.Save(nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("not a json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(path).Load()
	var corrupt *CorruptDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Load() error = %v, want *CorruptDataError", err)
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		t.Error("corrupt content must not be reported as an IOError")
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "top-level array", content: `[{"id": "a"}]`},
		{name: "top-level string", content: `"tasks"`},
		{name: "missing tasks key", content: `{"version": "1.0"}`},
		{name: "tasks not an array", content: `{"tasks": {"id": "a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := New(path).Load()
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("Load() error = %v, want *SchemaError", err)
			}
		})
	}
}

func TestLoadToleratesMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{
  "version": "1.0",
  "tasks": [
    {"id": "good", "description": "Fine", "created": "2024-01-01T00:00:00Z", "completed": false, "tags": ["a"]},
    {},
    "not even an object",
    {"id": 42, "completed": "yes"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tasks, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want tolerant decode", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("Load() = %d tasks, want 4", len(tasks))
	}
	if tasks[0].ID != "good" || tasks[0].Tags[0] != "a" {
		t.Errorf("tasks[0] = %+v, want the well-formed record", tasks[0])
	}
	if tasks[1].ID != "" || tasks[1].Completed {
		t.Errorf("tasks[1] = %+v, want zero-value defaults", tasks[1])
	}
	if tasks[3].ID != "42" {
		t.Errorf("tasks[3].ID = %q, want coerced \"42\"", tasks[3].ID)
	}
}

func TestAddTaskAppends(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	taskA := mustNewTask(t, "Task A", nil)
	taskB := mustNewTask(t, "Task B", nil)

	if err := s.AddTask(taskA); err != nil {
		t.Fatalf("AddTask(A) error = %v", err)
	}
	if err := s.AddTask(taskB); err != nil {
		t.Fatalf("AddTask(B) error = %v", err)
	}

	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Load() = %d tasks, want 2", len(tasks))
	}
	if tasks[0].ID != taskA.ID || tasks[1].ID != taskB.ID {
		t.Errorf("order = [%s %s], want [%s %s]", tasks[0].ID, tasks[1].ID, taskA.ID, taskB.ID)
	}
}

func TestGetTaskByID(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	first, _ := task.New("First", nil, task.WithID("dup"))
	second, _ := task.New("Second", nil, task.WithID("dup"))
	other := mustNewTask(t, "Other", nil)
	if err := s.Save([]task.Task{first, second, other}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Run("found", func(t *testing.T) {
		got, err := s.GetTaskByID(other.ID)
		if err != nil {
			t.Fatalf("GetTaskByID() error = %v", err)
		}
		if got == nil || got.Description != "Other" {
			t.Errorf("GetTaskByID() = %+v, want Other", got)
		}
	})

	t.Run("first match wins on colliding ids", func(t *testing.T) {
		got, err := s.GetTaskByID("dup")
		if err != nil {
			t.Fatalf("GetTaskByID() error = %v", err)
		}
		if got == nil || got.Description != "First" {
			t.Errorf("GetTaskByID(dup) = %+v, want the first record", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		got, err := s.GetTaskByID("nope")
		if err != nil {
			t.Fatalf("GetTaskByID() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetTaskByID(nope) = %+v, want nil", got)
		}
	})
}

func TestSaveFailureLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	s := New(path)

	original := []task.Task{mustNewTask(t, "Keep me", nil)}
	if err := s.Save(original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	s.rename = func(oldpath, newpath string) error {
		return errors.New("injected rename failure")
	}

	err = s.Save([]task.Task{mustNewTask(t, "Never visible", nil)})
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Save() error = %v, want *IOError", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("failed Save changed the backing file")
	}

	// The §9 litter fix: no temp files left behind on failure.
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp.*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left after failed Save: %v", leftovers)
	}
}

func TestSaveFailureOnAbsentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	s := New(path)
	s.rename = func(oldpath, newpath string) error {
		return errors.New("injected rename failure")
	}

	if err := s.Save([]task.Task{mustNewTask(t, "Test task", nil)}); err == nil {
		t.Fatal("Save() error = nil, want failure")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("backing file exists after failed first Save: %v", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	created, err := task.New("Test task", []string{"unit"})
	if err != nil {
		t.Fatalf("task.New() error = %v", err)
	}
	if err := s.Save([]task.Task{created}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Load() = %d tasks, want 1", len(tasks))
	}
	if tasks[0].Description != "Test task" {
		t.Errorf("Description = %q, want Test task", tasks[0].Description)
	}
	if len(tasks[0].Tags) != 1 || tasks[0].Tags[0] != "unit" {
		t.Errorf("Tags = %v, want [unit]", tasks[0].Tags)
	}
}

func TestSchemaValidation(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "tasks.schema.json")
	if err := os.WriteFile(schemaPath, []byte(DefaultSchema), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("valid file passes", func(t *testing.T) {
		path := filepath.Join(dir, "valid.json")
		s := New(path, WithSchemaFile(schemaPath))
		if err := s.Save([]task.Task{mustNewTask(t, "Test task", []string{"unit"})}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := s.Load(); err != nil {
			t.Errorf("Load() error = %v, want schema pass", err)
		}
	})

	t.Run("violating file fails with SchemaError", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		content := `{"version": 1.0, "tasks": [{"completed": "yes"}]}`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := New(path, WithSchemaFile(schemaPath)).Load()
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("Load() error = %v, want *SchemaError", err)
		}
	})

	t.Run("missing schema file is skipped", func(t *testing.T) {
		path := filepath.Join(dir, "noschema.json")
		s := New(path, WithSchemaFile(filepath.Join(dir, "does-not-exist.json")))
		if err := s.Save(nil); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := s.Load(); err != nil {
			t.Errorf("Load() error = %v, want validation skipped", err)
		}
	})
}
