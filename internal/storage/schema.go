package storage

import (
	"fmt"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/utils"
)

// DefaultSchema is the JSON Schema written by `tasks init`. It requires
// only the "tasks" key, matching what Load itself enforces; per-record
// fields stay optional because record decoding is tolerant.
const DefaultSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Task collection file",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "version": {"type": "string"},
    "updated": {"type": "string"},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "description": {"type": "string"},
          "created": {"type": "string"},
          "completed": {"type": "boolean"},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}
`

// validateSchema checks a parsed document against the configured JSON
// Schema. Validation is skipped when no schema is configured or the
// schema file does not exist.
func (s *Storage) validateSchema(doc any) error {
	if s.schemaPath == "" {
		return nil
	}
	if _, err := os.Stat(s.schemaPath); err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("schema file not found, skipping validation", "path", s.schemaPath)
			return nil
		}
		return &IOError{Op: "read", Path: s.schemaPath, Err: err}
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(s.schemaPath)
	if err != nil {
		return &SchemaError{Path: s.schemaPath, Reason: fmt.Sprintf("invalid schema file: %v", err)}
	}

	if err := schema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return &SchemaError{Path: s.path, Reason: schemaViolation(ve)}
		}
		return &SchemaError{Path: s.path, Reason: err.Error()}
	}
	return nil
}

// schemaViolation renders the deepest cause of a validation error with a
// readable instance path.
func schemaViolation(err *jsonschema.ValidationError) string {
	leaf := err
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	path := utils.JSONPointerToPath(leaf.InstanceLocation)
	if path == "" {
		return leaf.Message
	}
	return fmt.Sprintf("%s: %s", path, leaf.Message)
}
