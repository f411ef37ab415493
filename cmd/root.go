// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasks CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.New(cfg)
	store := newStorage(cfg, logger)

	// Determine the subcommand
	// If no args or first arg is a flag, use "list" as default
	subcommand := "list"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	// Execute the subcommand
	switch subcommand {
	case "add":
		return addCommand(store, logger, remainingArgs)
	case "list", "ls":
		return listCommand(store, remainingArgs)
	case "search":
		return searchCommand(store, remainingArgs)
	case "show":
		return showCommand(store, remainingArgs)
	case "init":
		return initCommand(cfg, store, logger, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, store, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newStorage builds the task store from config.
func newStorage(cfg *config.Config, logger *log.Logger) *storage.Storage {
	return storage.New(cfg.DataFile,
		storage.WithSchemaFile(cfg.SchemaFile),
		storage.WithLogger(logger),
	)
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, store *storage.Storage, args []string) error {
	fs := flag.NewFlagSet("tasks tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return ui.RunTUI(ctx, cfg, store)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("tasks version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasks - A crash-safe task manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <description>   Add a new task")
	fmt.Fprintln(w, "  list                List tasks (default command)")
	fmt.Fprintln(w, "  search <query>      Search tasks")
	fmt.Fprintln(w, "  show <id>           Show a single task")
	fmt.Fprintln(w, "  init                Create starter task, schema, and config files")
	fmt.Fprintln(w, "  tui                 Launch terminal UI")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options (use with 'add' command):")
	fmt.Fprintln(w, "  -tags string")
	fmt.Fprintln(w, "        Comma-separated tags for the task")
	fmt.Fprintln(w, "  -id string")
	fmt.Fprintln(w, "        Explicit task id (generated when empty)")
	fmt.Fprintln(w, "  -dry-run")
	fmt.Fprintln(w, "        Validate and print the task without saving")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'list' command):")
	fmt.Fprintln(w, "  -tag string")
	fmt.Fprintln(w, "        Only show tasks carrying this tag")
	fmt.Fprintln(w, "  -completed")
	fmt.Fprintln(w, "        Only show completed tasks")
	fmt.Fprintln(w, "  -incomplete")
	fmt.Fprintln(w, "        Only show incomplete tasks")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Output as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Search Options (use with 'search' command):")
	fmt.Fprintln(w, "  -field string")
	fmt.Fprintln(w, "        Field to search: description or tags (default description)")
	fmt.Fprintln(w, "  -ignore-case")
	fmt.Fprintln(w, "        Case-insensitive matching")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Output as JSON")
}
