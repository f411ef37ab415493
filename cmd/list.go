package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// listCommand prints tasks, optionally filtered by tag or completion.
func listCommand(store *storage.Storage, args []string) error {
	fs := flag.NewFlagSet("tasks list", flag.ContinueOnError)
	tag := fs.String("tag", "", "Only show tasks carrying this tag")
	completed := fs.Bool("completed", false, "Only show completed tasks")
	incomplete := fs.Bool("incomplete", false, "Only show incomplete tasks")
	asJSON := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *completed && *incomplete {
		return fmt.Errorf("-completed and -incomplete are mutually exclusive")
	}

	tasks, err := store.Load()
	if err != nil {
		return err
	}

	var filtered []task.Task
	for _, t := range tasks {
		if *completed && !t.Completed {
			continue
		}
		if *incomplete && t.Completed {
			continue
		}
		if *tag != "" && !hasTag(t, *tag) {
			continue
		}
		filtered = append(filtered, t)
	}

	if *asJSON {
		return printJSON(filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	for _, t := range filtered {
		printTask(t)
	}
	return nil
}

func hasTag(t task.Task, tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// printTask prints one task as a single table row.
func printTask(t task.Task) {
	id := t.ID
	if len(id) > 8 {
		id = id[:8]
	}

	created := t.Created
	if i := strings.IndexByte(created, 'T'); i > 0 {
		created = created[:i]
	}

	statusIcon := " "
	if t.Completed {
		statusIcon = "x"
	}

	line := fmt.Sprintf("%-8s  %-10s  [%s]  %s", id, created, statusIcon, t.Description)
	if len(t.Tags) > 0 {
		line += "  #" + strings.Join(t.Tags, " #")
	}
	fmt.Println(line)
}

// printJSON writes tasks to stdout as an indented JSON array.
func printJSON(tasks []task.Task) error {
	records := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.ToMap())
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
