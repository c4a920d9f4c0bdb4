package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/connorhaigh/item-cleaner/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate cleaning statistics",
	Long: `Display aggregate statistics over every recorded clean run: total runs,
paths removed, space reclaimed, and a per-profile breakdown.`,
	Example: `  # Show totals and the per-profile breakdown
  item-cleaner stats

  # Use a specific history database
  item-cleaner stats --db /tmp/history.db`,
	RunE: runStatsCmd,
}

func init() {
	RootCmd.AddCommand(statsCmd)
}

func runStatsCmd(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	totals, err := store.GetTotals()
	if err != nil {
		return err
	}

	if totals.Runs == 0 {
		fmt.Println("No runs recorded. Run 'item-cleaner clean' to record one.")
		return nil
	}

	fmt.Printf("Total runs:      %d\n", totals.Runs)
	fmt.Printf("Paths removed:   %d\n", totals.Removed)
	fmt.Printf("Space reclaimed: %s\n", output.FormatBytes(totals.Reclaimed))
	fmt.Printf("Errors:          %d\n", totals.Errors)

	profiles, err := store.GetProfileTotals()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(output.RenderProfileTable(profiles))

	return nil
}
