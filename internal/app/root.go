// Package app wires the item-cleaner command-line interface: profile
// cleaning, validation, run history, and scheduled cleans.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath string

	// RootCmd is the root command for item-cleaner
	RootCmd = &cobra.Command{
		Use:   "item-cleaner",
		Short: "Profile-driven filesystem cleanup",
		Long: `item-cleaner deletes the files and directories described by declarative
profiles: literal paths and glob patterns, each pattern optionally
keeping its highest-ranked matches through a retention rule.

Profiles are JSON or YAML documents:

  {
    "name": "downloads",
    "entries": [
      {"type": "path", "path": "/home/me/Downloads/scratch"},
      {"type": "pattern", "pattern": "/home/me/Downloads/*.iso",
       "retention": {"order": "modified", "count": 1}}
    ]
  }

Every clean run is recorded to a local SQLite database so reclaimed
space can be reviewed later with 'item-cleaner history' and
'item-cleaner stats'.

Quick Start:
  1. Write a profile document (see above)
  2. item-cleaner validate --profile downloads.json
  3. item-cleaner clean --profile downloads.json
  4. item-cleaner history

Examples:
  # Clean, confirming every path (the default mode)
  item-cleaner clean --profile downloads.json

  # Clean without prompting
  item-cleaner clean --profile downloads.json --mode silent

  # Run a silent clean every night at 3 AM
  item-cleaner schedule --profile downloads.json --cron "0 3 * * *" --daemon

  # Review reclaimed space
  item-cleaner stats`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("item-cleaner: profile-driven filesystem cleanup")
			fmt.Println()
			fmt.Println("Tip: Run 'item-cleaner clean --profile <file>' to clean a profile.")
			fmt.Println("     Run 'item-cleaner history' to review past runs.")
			fmt.Println("     Run 'item-cleaner --help' for all commands.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (default: ~/.item-cleaner/history.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// dataDir returns the item-cleaner data directory (~/.item-cleaner),
// creating it if needed.
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".item-cleaner")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create item-cleaner directory: %w", err)
	}

	return dir, nil
}

// getDBPath returns the history database path: the --db flag, then the
// defaults file, then ~/.item-cleaner/history.db.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if d := loadDefaults(); d.DB != "" {
		return d.DB, nil
	}

	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// getDefaultPIDFile returns the default schedule daemon PID file path.
func getDefaultPIDFile() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "schedule.pid"), nil
}

// getDefaultLogFile returns the default schedule daemon log file path.
func getDefaultLogFile() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "schedule.log"), nil
}
