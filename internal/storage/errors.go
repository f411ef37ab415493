package storage

import "fmt"

// CorruptDataError indicates the backing file exists but its content is
// not valid JSON.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// SchemaError indicates the file parsed as JSON but does not have the
// expected task-collection shape.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected file format in %s: %s", e.Path, e.Reason)
}

// IOError indicates a filesystem failure while reading or writing the
// task file. It is never retried; callers decide user-facing behavior.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *IOError) Unwrap() error {
	return e.Err
}
