// Package task defines the task entity and its map (de)serialization.
package task

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports invalid input when constructing a task.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Clock returns the current time. Injectable so tests are deterministic.
type Clock func() time.Time

// IDSource returns a new unique task identifier.
type IDSource func() string

// UTCClock is the default Clock.
func UTCClock() time.Time {
	return time.Now().UTC()
}

// RandomID is the default IDSource: a random 128-bit identifier rendered
// as 32 hex characters.
func RandomID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Task is one persisted unit of work. Created is an ISO-8601 UTC
// timestamp set once at construction and never changed by storage.
type Task struct {
	ID          string
	Description string
	Created     string
	Completed   bool
	Tags        []string
}

// IsZero returns true if the task is empty (has no ID).
func (t Task) IsZero() bool {
	return t.ID == ""
}

// Option configures task construction and decoding.
type Option func(*options)

type options struct {
	id      string
	created string
	clock   Clock
	ids     IDSource
}

// WithID supplies an explicit task id instead of a generated one.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithCreated supplies an explicit creation timestamp.
func WithCreated(created string) Option {
	return func(o *options) { o.created = created }
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithIDSource overrides the id source.
func WithIDSource(s IDSource) Option {
	return func(o *options) { o.ids = s }
}

func applyOptions(opts []Option) options {
	o := options{clock: UTCClock, ids: RandomID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a validated task. The description is trimmed before it is
// stored and must be non-empty afterwards; anything else fails with a
// *ValidationError. Tags are copied, never aliased.
func New(description string, tags []string, opts ...Option) (Task, error) {
	o := applyOptions(opts)

	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return Task{}, &ValidationError{Field: "description", Err: errors.New("must be non-empty")}
	}

	id := o.id
	if id == "" {
		id = o.ids()
	}
	created := o.created
	if created == "" {
		created = o.clock().Format(time.RFC3339)
	}

	copied := make([]string, len(tags))
	copy(copied, tags)

	return Task{
		ID:          id,
		Description: trimmed,
		Created:     created,
		Completed:   false,
		Tags:        copied,
	}, nil
}

// ToMap returns the task as a generic key-value document with keys
// id, description, created, completed, tags. The tags slice is copied so
// later mutation of the task does not affect the emitted map.
func (t Task) ToMap() map[string]any {
	tags := make([]string, len(t.Tags))
	copy(tags, t.Tags)
	return map[string]any{
		"id":          t.ID,
		"description": t.Description,
		"created":     t.Created,
		"completed":   t.Completed,
		"tags":        tags,
	}
}

// FromMap decodes a task from a generic document. Unlike New it is
// tolerant: missing id/description default to empty strings, a missing
// created timestamp defaults to the current time, completed defaults to
// false, tags to an empty slice. Present values are coerced to their
// expected types rather than rejected, so one malformed persisted record
// does not abort loading the rest of the file.
func FromMap(m map[string]any, opts ...Option) Task {
	o := applyOptions(opts)

	var created string
	if v, ok := m["created"]; ok {
		created = asString(v)
	} else {
		created = o.clock().Format(time.RFC3339)
	}

	return Task{
		ID:          asString(m["id"]),
		Description: asString(m["description"]),
		Created:     created,
		Completed:   asBool(m["completed"]),
		Tags:        asStringSlice(m["tags"]),
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(b))); err == nil {
			return parsed
		}
		return b != ""
	case float64:
		return b != 0
	default:
		return false
	}
}

func asStringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		out := make([]string, len(items))
		copy(out, items)
		return out
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, asString(item))
		}
		return out
	default:
		return []string{}
	}
}
