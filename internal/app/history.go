package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/connorhaigh/item-cleaner/internal/history"
	"github.com/connorhaigh/item-cleaner/internal/output"
)

var (
	historyFlagLimit int
	historyFlagRun   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded clean runs",
	Long: `Display clean runs recorded in the history database, newest first.

Each row shows what a run expanded, removed, and reclaimed. Use --run
with an ID (or a unique prefix of one) to list every path that run
attempted, including the ones that failed.`,
	Example: `  # Show the 20 most recent runs
  item-cleaner history

  # Show the 5 most recent runs
  item-cleaner history --limit 5

  # Show per-path detail for one run
  item-cleaner history --run 3f2a91c8`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyFlagRun, "run", "", "Show per-path detail for one run (ID or unique prefix)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyFlagLimit <= 0 {
		return fmt.Errorf("invalid limit: %d (must be positive)", historyFlagLimit)
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if historyFlagRun != "" {
		return showRun(store, historyFlagRun)
	}

	runs, err := store.ListRuns(historyFlagLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded. Run 'item-cleaner clean' to record one.")
		return nil
	}

	fmt.Print(output.RenderRunTable(runs))
	return nil
}

// showRun displays one run's summary and its per-path outcomes.
func showRun(store *history.Store, id string) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Profile:   %s\n", run.Profile)
	fmt.Printf("  Mode:      %s\n", run.Mode)
	fmt.Printf("  Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration:  %s\n", run.Duration)
	fmt.Printf("  Expanded:  %d paths\n", run.Expanded)
	fmt.Printf("  Removed:   %d paths (%d skipped)\n", run.Removed, run.Skipped)
	fmt.Printf("  Reclaimed: %s\n", output.FormatBytes(run.Reclaimed))
	fmt.Printf("  Errors:    %d\n", run.Errors)
	fmt.Println()

	removals, err := store.ListRemovals(run.ID)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderRemovalTable(removals))
	return nil
}
