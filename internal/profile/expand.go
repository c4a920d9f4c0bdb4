package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves the entry into the concrete list of paths to delete.
//
// A path entry expands to exactly its own path whether or not anything
// exists there; existence is settled later, at removal time. A pattern
// entry expands to the filesystem matches of its glob minus whatever
// its retention rule keeps. Matches that vanish or cannot be inspected
// mid-enumeration are skipped, never errors; the only failure mode is
// a pattern that does not compile.
func (e Entry) Expand() ([]string, error) {
	switch e.Kind {
	case KindPath:
		return []string{e.Path}, nil

	case KindPattern:
		matches, err := doublestar.FilepathGlob(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to parse glob pattern <%s>: %w", e.Pattern, err)
		}

		switch {
		case e.Retention != nil:
			return e.Retention.apply(matches), nil
		case e.Exception != "":
			return e.Exception.apply(matches), nil
		default:
			return matches, nil
		}

	default:
		return nil, fmt.Errorf("unknown entry kind %q", e.Kind)
	}
}

// Validate checks the entry without touching the filesystem: literal
// paths are always valid, patterns must compile as globs.
func (e Entry) Validate() error {
	switch e.Kind {
	case KindPath:
		return nil
	case KindPattern:
		if !doublestar.ValidatePattern(e.Pattern) {
			return fmt.Errorf("failed to parse glob pattern <%s>: %w", e.Pattern, doublestar.ErrBadPattern)
		}
		return nil
	default:
		return fmt.Errorf("unknown entry kind %q", e.Kind)
	}
}

// apply ranks matches descending by the retention's order key, retains
// the first Count, and returns the remainder for deletion. The sort is
// stable so ties keep their enumeration order. Retaining at least as
// many matches as exist yields an empty deletion list.
func (r *Retention) apply(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}

	ranked := make([]string, len(matches))
	copy(ranked, matches)

	switch r.Order {
	case OrderFileName:
		sort.SliceStable(ranked, func(i, j int) bool {
			return filepath.Base(ranked[i]) > filepath.Base(ranked[j])
		})
	case OrderCreated:
		sortByTimeDescending(ranked, createdTime)
	case OrderModified:
		sortByTimeDescending(ranked, modifiedTime)
	}

	if r.Count >= len(ranked) {
		return nil
	}
	return ranked[r.Count:]
}

// apply removes the single excluded match from the deletion list. An
// empty match set expands to nothing, never to everything.
func (x Exception) apply(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}

	keep := matches[0]
	switch x {
	case ExceptionFirstAscending:
		for _, m := range matches[1:] {
			if filepath.Base(m) < filepath.Base(keep) {
				keep = m
			}
		}
	case ExceptionFirstDescending:
		// Ties keep the later match.
		for _, m := range matches[1:] {
			if filepath.Base(m) >= filepath.Base(keep) {
				keep = m
			}
		}
	case ExceptionMostRecent:
		best := modifiedTime(keep)
		for _, m := range matches[1:] {
			if t := modifiedTime(m); !t.Before(best) {
				keep, best = m, t
			}
		}
	}

	out := make([]string, 0, len(matches)-1)
	for _, m := range matches {
		if m != keep {
			out = append(out, m)
		}
	}
	return out
}

func sortByTimeDescending(paths []string, key func(string) time.Time) {
	ranks := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		ranks[p] = key(p)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return ranks[paths[i]].After(ranks[paths[j]])
	})
}

// modifiedTime ranks a path by modification time. Unreadable metadata
// ranks as the zero time rather than failing the sort, so one bad file
// sorts last and stays eligible for deletion.
func modifiedTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// createdTime ranks a path by creation time, or by the closest
// timestamp the platform records (see fstime_*.go).
func createdTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	if t, ok := birthTime(info); ok {
		return t
	}
	return info.ModTime()
}
