// Package cleaner turns a loaded profile into removed paths: it
// expands every entry, canonicalizes the results, and removes them one
// by one while accounting for reclaimed bytes and per-path failures.
package cleaner

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/connorhaigh/item-cleaner/internal/profile"
)

// Mode controls how much confirmation a run asks for.
type Mode string

const (
	// ModeSilent removes everything without prompting.
	ModeSilent Mode = "silent"

	// ModeEveryEntry prompts once per profile entry before expansion.
	ModeEveryEntry Mode = "every-entry"

	// ModeEveryPath prompts for each resolved path before removal.
	ModeEveryPath Mode = "every-path"
)

// ParseMode reads a mode flag. Both the kebab spellings and the
// camelCase spellings used by older profile tooling are accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "silent":
		return ModeSilent, nil
	case "every-entry", "everyentry":
		return ModeEveryEntry, nil
	case "every-path", "everypath":
		return ModeEveryPath, nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be one of: silent, every-entry, every-path", s)
	}
}

// Removal is one path's outcome within a run.
type Removal struct {
	Path  string
	Bytes int64
	Err   error
}

// Summary aggregates a whole clean run.
type Summary struct {
	Profile        string
	Mode           Mode
	Started        time.Time
	Duration       time.Duration
	Entries        int   // entries expanded after any per-entry prompts
	EntriesSkipped int   // entries declined at the prompt
	Expanded       int   // canonical paths resolved for removal
	Removed        int   // paths removed without error
	PathsSkipped   int   // paths declined at the prompt
	Reclaimed      int64 // bytes freed, partial removals included
	Errors         []error
}

// Cleaner orchestrates one run. Execution is strictly sequential so
// prompts arrive one at a time and byte accounting needs no
// synchronization; there is no mid-run cancellation.
type Cleaner struct {
	Mode Mode

	// Prompt answers the yes/no confirmations the mode asks for. Nil
	// answers yes to everything.
	Prompt func(question string) bool

	// OnResolve observes the resolved path count once expansion and
	// canonicalization finish, before any removal starts.
	OnResolve func(count int, took time.Duration)

	// OnRemoval observes every removal attempt as it completes.
	OnRemoval func(index, total int, removal Removal)

	// OnError observes the child failures a best-effort directory
	// removal skips over.
	OnError func(*RemoveError)
}

// Run cleans every entry of the profile and reports the outcome.
//
// Entry expansion failures and per-path removal failures are collected
// and the run carries on; duplicate paths resolved by different
// entries are each attempted, the second degrading to an inspect
// failure once the first has removed them.
func (c *Cleaner) Run(p *profile.Profile) Summary {
	summary := Summary{
		Profile: p.Name,
		Mode:    c.Mode,
		Started: time.Now(),
	}

	entries := p.Entries
	if c.Mode == ModeEveryEntry {
		kept := make([]profile.Entry, 0, len(entries))
		for _, entry := range entries {
			if c.ask(fmt.Sprintf("Include entry [%s]?", entry)) {
				kept = append(kept, entry)
			} else {
				summary.EntriesSkipped++
			}
		}
		entries = kept
	}
	summary.Entries = len(entries)

	paths := c.resolve(entries, &summary)
	summary.Expanded = len(paths)
	if c.OnResolve != nil {
		c.OnResolve(len(paths), time.Since(summary.Started))
	}

	remover := &Remover{OnError: c.OnError}
	for i, path := range paths {
		if c.Mode == ModeEveryPath && !c.ask(fmt.Sprintf("Delete path <%s>?", path)) {
			summary.PathsSkipped++
			continue
		}

		bytes, err := remover.Remove(path)
		summary.Reclaimed += bytes
		if err != nil {
			summary.Errors = append(summary.Errors, err)
		} else {
			summary.Removed++
		}
		if c.OnRemoval != nil {
			c.OnRemoval(i+1, len(paths), Removal{Path: path, Bytes: bytes, Err: err})
		}
	}

	summary.Duration = time.Since(summary.Started)
	return summary
}

// resolve expands the entries and canonicalizes every expanded path.
// Paths that no longer exist drop out silently; a vanished path needs
// no removal. Duplicates are kept.
func (c *Cleaner) resolve(entries []profile.Entry, summary *Summary) []string {
	var paths []string
	for _, entry := range entries {
		expanded, err := entry.Expand()
		if err != nil {
			summary.Errors = append(summary.Errors, err)
			continue
		}
		for _, path := range expanded {
			abs, err := filepath.Abs(path)
			if err != nil {
				continue
			}
			canonical, err := filepath.EvalSymlinks(abs)
			if err != nil {
				continue
			}
			paths = append(paths, canonical)
		}
	}
	return paths
}

func (c *Cleaner) ask(question string) bool {
	if c.Prompt == nil {
		return true
	}
	return c.Prompt(question)
}
