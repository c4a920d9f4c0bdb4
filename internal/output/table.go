// Package output renders item-cleaner results for the terminal:
// tables of recorded runs, per-path removals, and profile totals, a
// progress bar for path removal, a spinner for indeterminate work, and
// human-readable sizes and relative times.
//
// Tables are plain text with ANSI colors where the terminal supports
// them; the progress indicators are safe for concurrent use.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/connorhaigh/item-cleaner/internal/history"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// IsColorEnabled reports whether ANSI color codes should be emitted:
// stdout must be a terminal and NO_COLOR must be unset.
func IsColorEnabled() bool {
	return os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(os.Stdout.Fd())
}

// FormatBytes renders a byte count in decimal units (kB, MB, GB), the
// way reclaimed sizes appear in summaries.
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// RenderRunTable renders recorded clean runs, newest first as provided.
func RenderRunTable(runs []*history.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-14s %-18s %-12s %8s %10s %7s\n",
		"ID", "Started", "Profile", "Mode", "Removed", "Reclaimed", "Errors"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, run := range runs {
		errCol := fmt.Sprintf("%7d", run.Errors)
		if run.Errors > 0 && IsColorEnabled() {
			errCol = colorRed + errCol + colorReset
		}

		sb.WriteString(fmt.Sprintf("%-10s %-14s %-18s %-12s %8d %10s %s\n",
			shortID(run.ID),
			formatRelativeTime(run.StartedAt),
			truncate(run.Profile, 18),
			run.Mode,
			run.Removed,
			FormatBytes(run.Reclaimed),
			errCol))
	}

	return sb.String()
}

// RenderRemovalTable renders the per-path outcomes of one run, in the
// order the paths were attempted.
func RenderRemovalTable(removals []*history.Removal) string {
	if len(removals) == 0 {
		return "No removals recorded for this run.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-52s %10s  %s\n", "Path", "Size", "Status"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, r := range removals {
		status := "✓"
		if IsColorEnabled() {
			status = colorGreen + status + colorReset
		}
		if r.Error != "" {
			status = truncate(r.Error, 40)
			if IsColorEnabled() {
				status = colorRed + status + colorReset
			}
		}

		sb.WriteString(fmt.Sprintf("%-52s %10s  %s\n",
			truncate(r.Path, 52),
			FormatBytes(r.Bytes),
			status))
	}

	return sb.String()
}

// RenderProfileTable renders per-profile aggregates, most recently run
// first as provided.
func RenderProfileTable(totals []*history.ProfileTotals) string {
	if len(totals) == 0 {
		return "No profiles recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-22s %6s %8s %10s  %s\n",
		"Profile", "Runs", "Removed", "Reclaimed", "Last Run"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, t := range totals {
		sb.WriteString(fmt.Sprintf("%-22s %6d %8d %10s  %s\n",
			truncate(t.Profile, 22),
			t.Runs,
			t.Removed,
			FormatBytes(t.Reclaimed),
			formatRelativeTime(t.LastRun)))
	}

	return sb.String()
}

// shortID abbreviates a run UUID for table display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// ageUnits maps a duration ceiling to the unit used below it, coarsest
// last. Anything past the last ceiling is counted in years.
var ageUnits = []struct {
	ceiling time.Duration
	size    time.Duration
	name    string
}{
	{time.Hour, time.Minute, "minute"},
	{24 * time.Hour, time.Hour, "hour"},
	{7 * 24 * time.Hour, 24 * time.Hour, "day"},
	{30 * 24 * time.Hour, 7 * 24 * time.Hour, "week"},
	{365 * 24 * time.Hour, 30 * 24 * time.Hour, "month"},
}

// formatRelativeTime renders t as a coarse age, e.g. "2 days ago".
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	age := time.Since(t)
	if age < time.Minute {
		return "just now"
	}
	for _, u := range ageUnits {
		if age < u.ceiling {
			return pluralAgo(int(age/u.size), u.name)
		}
	}
	return pluralAgo(int(age/(365*24*time.Hour)), "year")
}

func pluralAgo(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate caps s at maxLen bytes, marking elided text with "...".
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen > 3 {
		return s[:maxLen-3] + "..."
	}
	return s[:maxLen]
}
