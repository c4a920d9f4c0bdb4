package history

import (
	"strings"
	"testing"
	"time"
)

// Helper function to create an in-memory store for testing
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := store.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return store
}

func TestNew(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store.db should not be nil")
	}
}

func TestCreateSchema(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	// Verify tables exist by querying sqlite_master
	tables := []string{"runs", "removals"}
	for _, table := range tables {
		var name string
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Verify indexes exist
	indexes := []string{"idx_runs_started", "idx_runs_profile", "idx_removals_run"}
	for _, index := range indexes {
		var name string
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&name)
		if err != nil {
			t.Errorf("Index %s not found: %v", index, err)
		}
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	// Running CreateSchema again should not fail.
	if err := store.CreateSchema(); err != nil {
		t.Errorf("second CreateSchema() failed: %v", err)
	}
}

func testRun(profile string, started time.Time) *Run {
	return &Run{
		Profile:   profile,
		Mode:      "silent",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Expanded:  5,
		Removed:   4,
		Skipped:   0,
		Reclaimed: 2048,
		Errors:    1,
	}
}

func TestInsertRun_AssignsID(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	id, err := store.InsertRun(testRun("downloads", time.Now()))
	if err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}
	if id == "" {
		t.Fatal("InsertRun() returned empty ID")
	}
	// UUIDs are 36 characters with hyphens.
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("InsertRun() ID = %q, want UUID form", id)
	}
}

func TestInsertRun_KeepsProvidedID(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	run := testRun("downloads", time.Now())
	run.ID = "fixed-id"

	id, err := store.InsertRun(run)
	if err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}
	if id != "fixed-id" {
		t.Errorf("InsertRun() ID = %q, want %q", id, "fixed-id")
	}
}

func TestGetRun_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	id, err := store.InsertRun(testRun("downloads", started))
	if err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}

	got, err := store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}

	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Profile != "downloads" {
		t.Errorf("Profile = %q, want %q", got.Profile, "downloads")
	}
	if got.Mode != "silent" {
		t.Errorf("Mode = %q, want %q", got.Mode, "silent")
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", got.Duration)
	}
	if got.Expanded != 5 || got.Removed != 4 || got.Skipped != 0 {
		t.Errorf("counts = %d/%d/%d, want 5/4/0", got.Expanded, got.Removed, got.Skipped)
	}
	if got.Reclaimed != 2048 {
		t.Errorf("Reclaimed = %d, want 2048", got.Reclaimed)
	}
	if got.Errors != 1 {
		t.Errorf("Errors = %d, want 1", got.Errors)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetRun("missing")
	if err == nil {
		t.Fatal("GetRun() succeeded for missing run")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want not-found message", err)
	}
}

func TestGetRun_PrefixMatch(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	run := testRun("downloads", time.Now())
	run.ID = "a1b2c3d4-0000-0000-0000-000000000000"
	if _, err := store.InsertRun(run); err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}

	got, err := store.GetRun("a1b2c3d4")
	if err != nil {
		t.Fatalf("GetRun() by prefix failed: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("ID = %q, want %q", got.ID, run.ID)
	}
}

func TestGetRun_AmbiguousPrefix(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	for _, id := range []string{"abc-1", "abc-2"} {
		run := testRun("downloads", time.Now())
		run.ID = id
		if _, err := store.InsertRun(run); err != nil {
			t.Fatalf("InsertRun() failed: %v", err)
		}
	}

	_, err := store.GetRun("abc")
	if err == nil {
		t.Fatal("GetRun() succeeded for ambiguous prefix")
	}
	if !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("error = %q, want ambiguity message", err)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, profile := range []string{"first", "second", "third"} {
		if _, err := store.InsertRun(testRun(profile, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("InsertRun() failed: %v", err)
		}
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	if runs[0].Profile != "third" || runs[2].Profile != "first" {
		t.Errorf("runs out of order: %s, %s, %s", runs[0].Profile, runs[1].Profile, runs[2].Profile)
	}
}

func TestListRuns_Limit(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	base := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := store.InsertRun(testRun("p", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("InsertRun() failed: %v", err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("ListRuns(2) returned %d runs, want 2", len(runs))
	}
}

func TestInsertRemovals_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	id, err := store.InsertRun(testRun("downloads", time.Now()))
	if err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}

	removals := []Removal{
		{Path: "/tmp/a.log", Bytes: 100},
		{Path: "/tmp/b.log", Bytes: 0, Error: "failed to inspect entry </tmp/b.log>: permission denied"},
		{Path: "/tmp/c", Bytes: 4096},
	}
	if err := store.InsertRemovals(id, removals); err != nil {
		t.Fatalf("InsertRemovals() failed: %v", err)
	}

	got, err := store.ListRemovals(id)
	if err != nil {
		t.Fatalf("ListRemovals() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListRemovals() returned %d rows, want 3", len(got))
	}

	// Order of insertion is preserved.
	if got[0].Path != "/tmp/a.log" || got[2].Path != "/tmp/c" {
		t.Errorf("removals out of order: %s, %s, %s", got[0].Path, got[1].Path, got[2].Path)
	}
	if got[1].Error == "" {
		t.Error("expected error text on second removal")
	}
	if got[0].Bytes != 100 || got[2].Bytes != 4096 {
		t.Errorf("bytes = %d, %d, want 100, 4096", got[0].Bytes, got[2].Bytes)
	}
}

func TestInsertRemovals_EmptyIsNoOp(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if err := store.InsertRemovals("any", nil); err != nil {
		t.Errorf("InsertRemovals(nil) failed: %v", err)
	}
}

func TestInsertRemovals_UnknownRunRejected(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	// Foreign keys are on; removals for an unrecorded run must fail.
	err := store.InsertRemovals("ghost", []Removal{{Path: "/tmp/x", Bytes: 1}})
	if err == nil {
		t.Error("InsertRemovals() succeeded for unknown run ID")
	}
}

func TestGetTotals(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	totals, err := store.GetTotals()
	if err != nil {
		t.Fatalf("GetTotals() failed: %v", err)
	}
	if totals.Runs != 0 || totals.Removed != 0 || totals.Reclaimed != 0 {
		t.Errorf("empty store totals = %+v, want zeros", totals)
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := store.InsertRun(testRun("p", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("InsertRun() failed: %v", err)
		}
	}

	totals, err = store.GetTotals()
	if err != nil {
		t.Fatalf("GetTotals() failed: %v", err)
	}
	if totals.Runs != 3 {
		t.Errorf("Runs = %d, want 3", totals.Runs)
	}
	if totals.Removed != 12 {
		t.Errorf("Removed = %d, want 12", totals.Removed)
	}
	if totals.Reclaimed != 3*2048 {
		t.Errorf("Reclaimed = %d, want %d", totals.Reclaimed, 3*2048)
	}
	if totals.Errors != 3 {
		t.Errorf("Errors = %d, want 3", totals.Errors)
	}
}

func TestGetProfileTotals(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.InsertRun(testRun("downloads", base)); err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}
	if _, err := store.InsertRun(testRun("downloads", base.Add(time.Hour))); err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}
	if _, err := store.InsertRun(testRun("caches", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}

	totals, err := store.GetProfileTotals()
	if err != nil {
		t.Fatalf("GetProfileTotals() failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("GetProfileTotals() returned %d profiles, want 2", len(totals))
	}

	// Most recently run profile first.
	if totals[0].Profile != "caches" {
		t.Errorf("first profile = %q, want %q", totals[0].Profile, "caches")
	}
	if totals[1].Profile != "downloads" || totals[1].Runs != 2 {
		t.Errorf("second profile = %+v, want downloads with 2 runs", totals[1])
	}
	if !totals[1].LastRun.Equal(base.Add(time.Hour)) {
		t.Errorf("LastRun = %v, want %v", totals[1].LastRun, base.Add(time.Hour))
	}
}
