package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/storage"
)

// initCommand creates the starter task file, schema, and project config.
// Existing files are left untouched.
func initCommand(cfg *config.Config, store *storage.Storage, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("tasks init", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if _, err := os.Stat(cfg.DataFile); os.IsNotExist(err) {
		if err := store.Save(nil); err != nil {
			return fmt.Errorf("creating task file: %w", err)
		}
		fmt.Printf("Created %s\n", cfg.DataFile)
	} else {
		logger.Debug("task file exists, skipping", "file", cfg.DataFile)
		fmt.Printf("Exists  %s\n", cfg.DataFile)
	}

	if err := writeIfAbsent(cfg.SchemaFile, storage.DefaultSchema); err != nil {
		return fmt.Errorf("creating schema file: %w", err)
	}

	configPath := filepath.Join(cfg.ProjectRoot, "tasks.toml")
	if err := writeIfAbsent(configPath, config.ExampleConfig()); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	return nil
}

func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Exists  %s\n", path)
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
