package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// showCommand prints a single task looked up by id.
func showCommand(store *storage.Storage, args []string) error {
	fs := flag.NewFlagSet("tasks show", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("show requires exactly one task id")
	}
	id := fs.Arg(0)

	t, err := store.GetTaskByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("task not found: %s", id)
	}

	if *asJSON {
		return printJSON([]task.Task{*t})
	}

	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Created:     %s\n", t.Created)
	fmt.Printf("Completed:   %t\n", t.Completed)
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	return nil
}
