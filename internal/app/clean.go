package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/connorhaigh/item-cleaner/internal/cleaner"
	"github.com/connorhaigh/item-cleaner/internal/history"
	"github.com/connorhaigh/item-cleaner/internal/output"
	"github.com/connorhaigh/item-cleaner/internal/profile"
)

var (
	cleanFlagProfile   string
	cleanFlagMode      string
	cleanFlagNoHistory bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the paths described by a profile",
	Long: `Clean the paths described by a profile: expand every entry, then delete
the resolved paths and report the space reclaimed.

Modes control how much confirmation is asked for:
  every-path   Confirm each resolved path before deletion (default)
  every-entry  Confirm each profile entry before expansion
  silent       Delete everything without prompting

Directories are deleted recursively and best-effort: children that fail
to delete are reported and skipped, and the space freed by the rest is
still counted. Symbolic links are deleted as links; their targets are
never touched.

Each run is recorded to the history database unless --no-history is
given. Review past runs with 'item-cleaner history'.

Examples:
  # Confirm every path (the default)
  item-cleaner clean --profile downloads.json

  # Confirm once per entry instead
  item-cleaner clean --profile downloads.json --mode every-entry

  # Delete everything without prompting
  item-cleaner clean --profile downloads.json --mode silent

  # Clean without recording history
  item-cleaner clean --profile downloads.json --no-history`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanFlagProfile, "profile", "p", "", "Profile file to clean (default: from the defaults file)")
	cleanCmd.Flags().StringVarP(&cleanFlagMode, "mode", "m", "", "Confirmation mode: silent, every-entry, every-path (default: every-path)")
	cleanCmd.Flags().BoolVar(&cleanFlagNoHistory, "no-history", false, "Skip recording the run to the history database")

	RootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	path, err := resolveProfilePath(cleanFlagProfile)
	if err != nil {
		return err
	}

	mode, err := resolveMode(cleanFlagMode)
	if err != nil {
		return err
	}

	fmt.Printf("Loading profile from path <%s>...\n", path)

	prof, err := profile.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Discovering paths using profile '%s'...\n", prof.Name)

	prompt := newPrompter(os.Stdin, os.Stdout)
	summary, removals := executeClean(prof, mode, prompt.ask)

	// Display results
	fmt.Printf("\n✓ Deleted %d of %d paths in %s, reclaiming %s of space\n",
		summary.Removed,
		summary.Expanded,
		summary.Duration.Round(time.Millisecond),
		output.FormatBytes(summary.Reclaimed))

	if summary.EntriesSkipped > 0 {
		fmt.Printf("  Entries skipped at the prompt: %d\n", summary.EntriesSkipped)
	}
	if summary.PathsSkipped > 0 {
		fmt.Printf("  Paths skipped at the prompt: %d\n", summary.PathsSkipped)
	}

	if len(summary.Errors) > 0 {
		fmt.Printf("\n⚠ %d failures:\n", len(summary.Errors))
		for _, failure := range summary.Errors {
			fmt.Printf("  - %v\n", failure)
		}
	}

	if !cleanFlagNoHistory {
		recordRun(summary, removals)
	}

	return nil
}

// resolveMode returns the confirmation mode to use: the flag value if
// set, then the defaults file, then every-path.
func resolveMode(flagValue string) (cleaner.Mode, error) {
	value := flagValue
	if value == "" {
		value = loadDefaults().Mode
	}
	if value == "" {
		return cleaner.ModeEveryPath, nil
	}
	return cleaner.ParseMode(value)
}

// executeClean runs the cleaner over the profile, rendering progress
// and collecting per-path outcomes for the history database.
func executeClean(prof *profile.Profile, mode cleaner.Mode, prompt func(string) bool) (cleaner.Summary, []history.Removal) {
	var (
		progress *output.ProgressBar
		removals []history.Removal
	)

	c := &cleaner.Cleaner{
		Mode:   mode,
		Prompt: prompt,
		OnResolve: func(count int, took time.Duration) {
			fmt.Printf("Expanded %d paths in %s.\n", count, took.Round(time.Millisecond))
			fmt.Printf("Deleting %d paths...\n", count)

			// A progress bar would interleave with the per-path prompts.
			if mode != cleaner.ModeEveryPath && count > 0 {
				progress = output.NewProgress(count, "Deleting paths")
			}
		},
		OnRemoval: func(index, total int, r cleaner.Removal) {
			if progress != nil {
				progress.Increment()
			}

			removal := history.Removal{Path: r.Path, Bytes: r.Bytes}
			if r.Err != nil {
				removal.Error = r.Err.Error()
			}
			removals = append(removals, removal)
		},
	}

	summary := c.Run(prof)

	if progress != nil {
		progress.Finish()
	}

	return summary, removals
}

// recordRun writes the run and its removals to the history database.
// History failures warn on stderr; they never fail the clean.
func recordRun(summary cleaner.Summary, removals []history.Removal) {
	store, err := openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
		return
	}
	defer store.Close()

	run := &history.Run{
		Profile:   summary.Profile,
		Mode:      string(summary.Mode),
		StartedAt: summary.Started,
		Duration:  summary.Duration,
		Expanded:  summary.Expanded,
		Removed:   summary.Removed,
		Skipped:   summary.PathsSkipped,
		Reclaimed: summary.Reclaimed,
		Errors:    len(summary.Errors),
	}

	id, err := store.InsertRun(run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
		return
	}

	if err := store.InsertRemovals(id, removals); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record removals: %v\n", err)
	}

	fmt.Printf("\nRun recorded: %s\n", shortRunID(id))
}

// shortRunID abbreviates a run UUID for console display.
func shortRunID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
