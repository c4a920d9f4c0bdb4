// Package config provides configuration file parsing for item-cleaner.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the item-cleaner config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/item-cleaner if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "item-cleaner"), nil
}

// Defaults holds flag defaults declared by the user, so routinely cleaned
// profiles do not need repeating on every invocation. Empty fields mean
// "not configured" and leave the built-in flag defaults in place.
type Defaults struct {
	// Profile is the profile document passed to clean/validate/schedule
	// when --profile is omitted.
	Profile string

	// Mode is the confirmation mode used by clean when --mode is omitted.
	Mode string

	// Cron is the schedule used by the schedule command when --cron is
	// omitted.
	Cron string

	// DB is the history database path used when --db is omitted.
	DB string
}

// LoadDefaults reads the defaults file at {dir}/defaults and returns the
// parsed values. If the file does not exist, an empty Defaults is returned
// without an error. Unknown keys and malformed lines are silently skipped.
func LoadDefaults(dir string) (*Defaults, error) {
	d := &Defaults{}

	path := filepath.Join(dir, "defaults")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Expect exactly one "=" separating key from value.
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if value == "" {
			continue
		}

		switch key {
		case "profile":
			d.Profile = value
		case "mode":
			d.Mode = value
		case "cron":
			d.Cron = value
		case "db":
			d.DB = value
		}
	}
	if err := scanner.Err(); err != nil {
		return d, err
	}

	return d, nil
}
