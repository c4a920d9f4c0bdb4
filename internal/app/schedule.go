package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/connorhaigh/item-cleaner/internal/cleaner"
	"github.com/connorhaigh/item-cleaner/internal/history"
	"github.com/connorhaigh/item-cleaner/internal/output"
	"github.com/connorhaigh/item-cleaner/internal/profile"
	"github.com/connorhaigh/item-cleaner/internal/schedule"
)

// defaultCronSpec runs the clean daily at 3 AM.
const defaultCronSpec = "0 3 * * *"

var (
	scheduleFlagProfile string
	scheduleFlagCron    string
	scheduleDaemon      bool
	scheduleDaemonChild bool
	scheduleStop        bool
	schedulePIDFile     string
	scheduleLogFile     string
	scheduleNoWatch     bool

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Run silent cleans on a cron schedule",
		Long: `Run the profile's clean silently on a cron schedule.

The profile file is watched while the schedule runs: edits are picked
up without a restart, and an edit that fails to parse keeps the
previous profile in effect. Disable the watch with --no-watch.

Schedule modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a background process, logging to a file
  • Stop: Stop a running daemon

Every scheduled clean is recorded to the history database like an
interactive 'item-cleaner clean --mode silent'.`,
		Example: `  # Clean every night at 3 AM, in the foreground
  item-cleaner schedule --profile downloads.json

  # Clean every 6 hours as a background daemon
  item-cleaner schedule --profile downloads.json --cron "0 */6 * * *" --daemon

  # Stop the running daemon
  item-cleaner schedule --stop

  # Use custom PID and log files
  item-cleaner schedule --profile downloads.json --daemon --pid-file /tmp/clean.pid --log-file /tmp/clean.log`,
		RunE: runSchedule,
	}
)

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleFlagProfile, "profile", "p", "", "Profile file to clean (default: from the defaults file)")
	scheduleCmd.Flags().StringVar(&scheduleFlagCron, "cron", "", "Cron schedule for the clean (default: \"0 3 * * *\")")
	scheduleCmd.Flags().BoolVar(&scheduleDaemon, "daemon", false, "run as background daemon")
	scheduleCmd.Flags().BoolVar(&scheduleDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	scheduleCmd.Flags().BoolVar(&scheduleStop, "stop", false, "stop running daemon")
	scheduleCmd.Flags().StringVar(&schedulePIDFile, "pid-file", "", "PID file path (default: ~/.item-cleaner/schedule.pid)")
	scheduleCmd.Flags().StringVar(&scheduleLogFile, "log-file", "", "log file path (default: ~/.item-cleaner/schedule.log)")
	scheduleCmd.Flags().BoolVar(&scheduleNoWatch, "no-watch", false, "do not reload the profile when the file changes")

	// Hide the internal daemon-child flag from help
	scheduleCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	// Get default paths if not specified
	if schedulePIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		schedulePIDFile = defaultPID
	}

	if scheduleLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		scheduleLogFile = defaultLog
	}

	// Handle stop command
	if scheduleStop {
		return stopScheduleDaemon()
	}

	path, err := resolveProfilePath(scheduleFlagProfile)
	if err != nil {
		return err
	}

	// The daemon child starts from its own working directory, so hand
	// it an absolute path.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve profile path: %w", err)
	}

	spec := scheduleFlagCron
	if spec == "" {
		spec = loadDefaults().Cron
	}
	if spec == "" {
		spec = defaultCronSpec
	}

	if err := schedule.ValidateSpec(spec); err != nil {
		return err
	}

	// Handle daemon child process
	if scheduleDaemonChild {
		return runScheduleChild(abs, spec)
	}

	// Fail on a bad profile before going to the background.
	if _, err := profile.Load(abs); err != nil {
		return err
	}

	// Handle daemon mode
	if scheduleDaemon {
		return startScheduleDaemon(abs, spec)
	}

	// Run in foreground
	return runScheduleForeground(abs, spec)
}

func stopScheduleDaemon() error {
	running, err := schedule.IsDaemonRunning(schedulePIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon...")
	spinner.Start()
	if err := schedule.StopDaemon(schedulePIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startScheduleDaemon(profilePath, cronSpec string) error {
	childArgs := []string{
		"schedule",
		"--daemon-child",
		"--profile", profilePath,
		"--cron", cronSpec,
		"--pid-file", schedulePIDFile,
		"--log-file", scheduleLogFile,
	}
	if scheduleNoWatch {
		childArgs = append(childArgs, "--no-watch")
	}
	if dbPath != "" {
		childArgs = append(childArgs, "--db", dbPath)
	}

	spinner := output.NewSpinner("Starting daemon...")
	spinner.Start()
	if err := schedule.StartDaemon(schedulePIDFile, scheduleLogFile, childArgs...); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Printf("\nScheduled cleaning daemon started\n")
	fmt.Printf("  Profile:  %s\n", profilePath)
	fmt.Printf("  Schedule: %s\n", cronSpec)
	fmt.Printf("  PID file: %s\n", schedulePIDFile)
	fmt.Printf("  Log file: %s\n", scheduleLogFile)
	fmt.Printf("\nTo stop: item-cleaner schedule --stop\n")

	return nil
}

func runScheduleChild(profilePath, cronSpec string) error {
	// stdout/stderr are redirected to the log file by the parent.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	defer schedule.RemovePIDFile(schedulePIDFile)

	return runScheduleLoop(logger, profilePath, cronSpec, !scheduleNoWatch)
}

func runScheduleForeground(profilePath, cronSpec string) error {
	fmt.Println("Starting scheduled cleaning (press Ctrl+C to stop)...")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return runScheduleLoop(logger, profilePath, cronSpec, !scheduleNoWatch)
}

// runScheduleLoop loads the profile, fires silent cleans per the cron
// spec, and reloads the profile on file changes until a SIGTERM or
// SIGINT arrives.
func runScheduleLoop(logger *slog.Logger, profilePath, cronSpec string, watch bool) error {
	prof, err := profile.Load(profilePath)
	if err != nil {
		return err
	}

	logger.Info("profile loaded", "profile", prof.Name, "entries", len(prof.Entries))

	// The watcher goroutine swaps the profile; the job reads it.
	var mu sync.Mutex
	current := prof

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := schedule.New(cronSpec, func(ctx context.Context) {
		mu.Lock()
		p := current
		mu.Unlock()
		executeScheduledClean(logger, p)
	}, logger)

	if err := sched.Start(ctx); err != nil {
		return err
	}

	if next := sched.NextRun(); next != nil {
		logger.Info("next clean scheduled", "at", next.Format(time.RFC3339))
	}

	var watcher *schedule.ProfileWatcher
	if watch {
		watcher, err = schedule.NewProfileWatcher(profilePath, logger)
		if err != nil {
			return err
		}

		go func() {
			err := watcher.Watch(ctx, func() error {
				reloaded, err := profile.Load(profilePath)
				if err != nil {
					return err
				}

				mu.Lock()
				current = reloaded
				mu.Unlock()

				logger.Info("profile reloaded", "profile", reloaded.Name, "entries", len(reloaded.Entries))
				return nil
			})
			if err != nil {
				logger.Error("profile watcher exited", "error", err)
			}
		}()
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop profile watcher", "error", err)
		}
	}
	sched.Stop()

	return nil
}

// executeScheduledClean runs one silent clean of the profile and
// records it to the history database.
func executeScheduledClean(logger *slog.Logger, prof *profile.Profile) {
	var removals []history.Removal

	c := &cleaner.Cleaner{
		Mode: cleaner.ModeSilent,
		OnRemoval: func(index, total int, r cleaner.Removal) {
			removal := history.Removal{Path: r.Path, Bytes: r.Bytes}
			if r.Err != nil {
				removal.Error = r.Err.Error()
			}
			removals = append(removals, removal)
		},
	}

	summary := c.Run(prof)

	logger.Info("clean completed",
		"profile", summary.Profile,
		"expanded", summary.Expanded,
		"removed", summary.Removed,
		"reclaimed", output.FormatBytes(summary.Reclaimed),
		"errors", len(summary.Errors))

	for _, failure := range summary.Errors {
		logger.Warn("removal failed", "error", failure)
	}

	recordScheduledRun(logger, summary, removals)
}

// recordScheduledRun is recordRun for the daemon: failures go to the
// log instead of stderr, and nothing prints to stdout.
func recordScheduledRun(logger *slog.Logger, summary cleaner.Summary, removals []history.Removal) {
	store, err := openHistory()
	if err != nil {
		logger.Warn("failed to record run", "error", err)
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
		logger.Warn("failed to record run", "error", err)
		return
	}

	if err := store.InsertRemovals(id, removals); err != nil {
		logger.Warn("failed to record removals", "error", err)
		return
	}

	logger.Info("run recorded", "id", shortRunID(id))
}
