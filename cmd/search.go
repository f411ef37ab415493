package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// searchCommand finds tasks by description substring or exact tag.
func searchCommand(store *storage.Storage, args []string) error {
	fs := flag.NewFlagSet("tasks search", flag.ContinueOnError)
	field := fs.String("field", "description", "Field to search: description or tags")
	ignoreCase := fs.Bool("ignore-case", false, "Case-insensitive matching")
	asJSON := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("search requires exactly one query argument")
	}
	query := fs.Arg(0)

	if *field != "description" && *field != "tags" {
		return fmt.Errorf("unknown search field: %s (expected description or tags)", *field)
	}

	tasks, err := store.Load()
	if err != nil {
		return err
	}

	var matched []task.Task
	for _, t := range tasks {
		if matchTask(t, query, *field, *ignoreCase) {
			matched = append(matched, t)
		}
	}

	if *asJSON {
		return printJSON(matched)
	}

	if len(matched) == 0 {
		fmt.Println("No matching tasks.")
		return nil
	}
	for _, t := range matched {
		printTask(t)
	}
	return nil
}

// matchTask checks a task against the query. Descriptions match on
// substring, tags match exactly.
func matchTask(t task.Task, query, field string, ignoreCase bool) bool {
	switch field {
	case "tags":
		for _, tag := range t.Tags {
			if equalFold(tag, query, ignoreCase) {
				return true
			}
		}
		return false
	default:
		desc := t.Description
		if ignoreCase {
			desc = strings.ToLower(desc)
			query = strings.ToLower(query)
		}
		return strings.Contains(desc, query)
	}
}

func equalFold(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}
