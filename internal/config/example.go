package config

// ExampleConfig returns the starter project config written by `tasks init`.
func ExampleConfig() string {
	return `# tasks configuration
# Values here are overridden by TASKS_* environment variables and CLI flags.

# Path to the task file, relative to this directory unless absolute.
data_file = "tasks.json"

# JSON Schema used to validate the task file on load. Validation is
# skipped when the file does not exist.
schema_file = "tasks.schema.json"

# Logging: level is one of debug, info, warn, error;
# format is one of text, json, logfmt.
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
