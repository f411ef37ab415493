package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
	"github.com/nibzard/tasks-go/internal/utils"
)

// addCommand creates a task and appends it to the store.
func addCommand(store *storage.Storage, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("tasks add", flag.ContinueOnError)
	tagsFlag := fs.String("tags", "", "Comma-separated tags for the task")
	idFlag := fs.String("id", "", "Explicit task id (generated when empty)")
	dryRun := fs.Bool("dry-run", false, "Validate and print the task without saving")

	if err := fs.Parse(args); err != nil {
		return err
	}

	description := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("add requires a task description")
	}

	var tags []string
	if *tagsFlag != "" {
		tags = utils.SplitAndTrim(*tagsFlag, ",")
	}

	var opts []task.Option
	if *idFlag != "" {
		opts = append(opts, task.WithID(*idFlag))
	}

	t, err := task.New(description, tags, opts...)
	if err != nil {
		return err
	}

	if *dryRun {
		logger.Info("dry run, not saving", "id", t.ID)
		printTask(t)
		return nil
	}

	if err := store.AddTask(t); err != nil {
		return err
	}

	logger.Debug("task saved", "id", t.ID, "file", store.Path())
	fmt.Printf("Added task %s\n", t.ID)
	return nil
}
