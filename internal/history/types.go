package history

import "time"

// Run is one recorded clean run.
type Run struct {
	ID        string
	Profile   string
	Mode      string
	StartedAt time.Time
	Duration  time.Duration
	Expanded  int
	Removed   int
	Skipped   int
	Reclaimed int64
	Errors    int
}

// Removal is one path attempted during a run. Error is empty when the
// removal succeeded.
type Removal struct {
	RunID string
	Path  string
	Bytes int64
	Error string
}

// Totals aggregates every recorded run.
type Totals struct {
	Runs      int
	Removed   int
	Reclaimed int64
	Errors    int
}

// ProfileTotals aggregates the recorded runs of one profile.
type ProfileTotals struct {
	Profile   string
	Runs      int
	Removed   int
	Reclaimed int64
	LastRun   time.Time
}
