package app

import (
	"fmt"
	"os"

	"github.com/connorhaigh/item-cleaner/internal/config"
	"github.com/connorhaigh/item-cleaner/internal/history"
)

// loadDefaults reads the user defaults file. A missing or unreadable
// file yields empty defaults; commands fall back to their built-ins.
func loadDefaults() config.Defaults {
	dir, err := config.Dir()
	if err != nil {
		return config.Defaults{}
	}

	defaults, err := config.LoadDefaults(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read defaults file: %v\n", err)
		return config.Defaults{}
	}

	return *defaults
}

// openHistory opens the history database and ensures the schema
// exists. The caller must Close the returned store.
func openHistory() (*history.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}

	store, err := history.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := store.CreateSchema(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return store, nil
}

// resolveProfilePath returns the profile path to use: the flag value
// if set, otherwise the defaults file.
func resolveProfilePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if d := loadDefaults(); d.Profile != "" {
		return d.Profile, nil
	}
	return "", fmt.Errorf("no profile specified: pass --profile or set one in the defaults file")
}
