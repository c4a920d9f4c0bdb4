package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/connorhaigh/item-cleaner/internal/history"
)

// seedHistory points the --db flag at a fresh database and records one
// run with two removals, returning the run ID.
func seedHistory(t *testing.T) string {
	t.Helper()

	oldDBPath := dbPath
	dbPath = filepath.Join(t.TempDir(), "history.db")
	t.Cleanup(func() { dbPath = oldDBPath })

	store, err := openHistory()
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	defer store.Close()

	id, err := store.InsertRun(&history.Run{
		Profile:   "downloads",
		Mode:      "silent",
		StartedAt: time.Now().Add(-time.Hour),
		Duration:  1200 * time.Millisecond,
		Expanded:  3,
		Removed:   2,
		Skipped:   0,
		Reclaimed: 4096,
		Errors:    1,
	})
	if err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}

	removals := []history.Removal{
		{Path: "/tmp/a.iso", Bytes: 4096},
		{Path: "/tmp/b.iso", Bytes: 0, Error: "permission denied"},
	}
	if err := store.InsertRemovals(id, removals); err != nil {
		t.Fatalf("failed to insert removals: %v", err)
	}

	return id
}

func TestHistoryCommand(t *testing.T) {
	if historyCmd.Use != "history" {
		t.Errorf("expected Use to be 'history', got '%s'", historyCmd.Use)
	}

	if historyCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if historyCmd.Example == "" {
		t.Error("expected Example to be set")
	}

	if historyCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestHistoryCommandRegistration(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Use == "history" {
			found = true
			break
		}
	}

	if !found {
		t.Error("history command not registered with root command")
	}
}

func TestHistoryCommandFlagDefaults(t *testing.T) {
	limitFlag := historyCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("expected --limit flag to be registered")
	}
	if limitFlag.DefValue != "20" {
		t.Errorf("expected limit default to be '20', got '%s'", limitFlag.DefValue)
	}

	runFlag := historyCmd.Flags().Lookup("run")
	if runFlag == nil {
		t.Fatal("expected --run flag to be registered")
	}
	if runFlag.DefValue != "" {
		t.Errorf("expected run default to be empty, got '%s'", runFlag.DefValue)
	}
}

func TestRunHistoryEmpty(t *testing.T) {
	oldDBPath := dbPath
	dbPath = filepath.Join(t.TempDir(), "history.db")
	defer func() { dbPath = oldDBPath }()

	oldRun := historyFlagRun
	historyFlagRun = ""
	defer func() { historyFlagRun = oldRun }()

	var runErr error
	out := captureStdout(t, func() {
		runErr = runHistory(historyCmd, nil)
	})

	if runErr != nil {
		t.Fatalf("runHistory() error = %v", runErr)
	}
	if !strings.Contains(out, "No runs recorded") {
		t.Errorf("expected empty-history hint, got %q", out)
	}
}

func TestRunHistoryListsRuns(t *testing.T) {
	seedHistory(t)

	oldRun := historyFlagRun
	historyFlagRun = ""
	defer func() { historyFlagRun = oldRun }()

	var runErr error
	out := captureStdout(t, func() {
		runErr = runHistory(historyCmd, nil)
	})

	if runErr != nil {
		t.Fatalf("runHistory() error = %v", runErr)
	}

	if !strings.Contains(out, "downloads") {
		t.Errorf("expected run table to mention the profile, got %q", out)
	}
	if !strings.Contains(out, "silent") {
		t.Errorf("expected run table to mention the mode, got %q", out)
	}
}

func TestRunHistoryShowsRunDetail(t *testing.T) {
	id := seedHistory(t)

	oldRun := historyFlagRun
	historyFlagRun = id[:8] // unique prefix resolves like the full ID
	defer func() { historyFlagRun = oldRun }()

	var runErr error
	out := captureStdout(t, func() {
		runErr = runHistory(historyCmd, nil)
	})

	if runErr != nil {
		t.Fatalf("runHistory() error = %v", runErr)
	}

	if !strings.Contains(out, "Run "+id) {
		t.Errorf("expected run header with full ID, got %q", out)
	}
	if !strings.Contains(out, "/tmp/a.iso") {
		t.Errorf("expected removal detail, got %q", out)
	}
	if !strings.Contains(out, "permission denied") {
		t.Errorf("expected failed removal's error, got %q", out)
	}
}

func TestRunHistoryUnknownRun(t *testing.T) {
	seedHistory(t)

	oldRun := historyFlagRun
	historyFlagRun = "ffffffff"
	defer func() { historyFlagRun = oldRun }()

	var runErr error
	captureStdout(t, func() {
		runErr = runHistory(historyCmd, nil)
	})

	if runErr == nil {
		t.Fatal("expected error for unknown run ID")
	}
	if !strings.Contains(runErr.Error(), "not found") {
		t.Errorf("error = %q, want 'not found'", runErr.Error())
	}
}

func TestRunHistoryInvalidLimit(t *testing.T) {
	oldLimit := historyFlagLimit
	historyFlagLimit = 0
	defer func() { historyFlagLimit = oldLimit }()

	err := runHistory(historyCmd, nil)
	if err == nil {
		t.Fatal("expected error for non-positive limit")
	}
	if !strings.Contains(err.Error(), "invalid limit") {
		t.Errorf("error = %q, want 'invalid limit'", err.Error())
	}
}
