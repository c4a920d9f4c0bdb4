// Item-cleaner removes expendable files and directories according to
// a declarative profile.
//
// A profile lists literal paths and glob patterns to delete, with
// optional retention rules that keep the newest items of a pattern and
// remove the rest.
//
// Usage:
//
//	# Remove everything a profile resolves to
//	item-cleaner clean --profile profile.json
//
//	# Confirm each deletion individually
//	item-cleaner clean --profile profile.json --mode every-path
//
//	# Check a profile without deleting anything
//	item-cleaner validate --profile profile.json
//
//	# Review past runs and totals
//	item-cleaner history
//	item-cleaner stats
//
//	# Run cleans on a cron schedule in the background
//	item-cleaner schedule --profile profile.json --daemon
package main

import (
	"fmt"
	"os"

	"github.com/connorhaigh/item-cleaner/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
