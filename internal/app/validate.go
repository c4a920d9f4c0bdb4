package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/connorhaigh/item-cleaner/internal/profile"
)

var validateFlagProfile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a profile without touching the filesystem",
	Long: `Validate a profile: parse the document and compile every glob pattern,
without expanding anything or touching the paths it describes.

Use this after editing a profile to catch malformed entries before the
next clean. Validation never lists the paths a pattern would match.

Examples:
  # Validate a profile document
  item-cleaner validate --profile downloads.json

  # Validate the default profile from the defaults file
  item-cleaner validate`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlagProfile, "profile", "p", "", "Profile file to validate (default: from the defaults file)")

	RootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveProfilePath(validateFlagProfile)
	if err != nil {
		return err
	}

	fmt.Printf("Loading profile from path <%s>...\n", path)

	prof, err := profile.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Validating %d entries of profile '%s'...\n\n", len(prof.Entries), prof.Name)

	failed := 0
	for _, entry := range prof.Entries {
		if err := entry.Validate(); err != nil {
			fmt.Printf("  ⚠ %s: %v\n", entry, err)
			failed++
			continue
		}
		fmt.Printf("  ✓ %s%s\n", entry, describeRetention(entry))
	}

	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed validation", failed, len(prof.Entries))
	}

	fmt.Printf("✓ Profile '%s' is valid\n", prof.Name)
	return nil
}

// describeRetention renders an entry's retention rule for the
// validation listing, or nothing when the entry has none.
func describeRetention(entry profile.Entry) string {
	if entry.Retention != nil {
		return fmt.Sprintf(" (keep %d by %s)", entry.Retention.Count, entry.Retention.Order)
	}
	if entry.Exception != "" {
		return fmt.Sprintf(" (except %s)", entry.Exception)
	}
	return ""
}
