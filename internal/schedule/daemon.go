package schedule

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// errStalePID marks a PID file whose contents do not parse as a
// process ID.
var errStalePID = errors.New("invalid PID in file")

// StartDaemon re-executes the current binary with args as a detached
// background process, writes its PID to pidFile, and redirects its
// output to logFile. It refuses to start when pidFile already names a
// live daemon.
func StartDaemon(pidFile, logFile string, args ...string) error {
	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon already running (PID file: %s)", pidFile)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	logF, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil
	cmd.Stdout = logF
	cmd.Stderr = logF
	// A fresh session detaches the child from the controlling terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	record := fmt.Sprintf("%d\n", cmd.Process.Pid)
	if err := os.WriteFile(pidFile, []byte(record), 0644); err != nil {
		cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release daemon process: %w", err)
	}

	return nil
}

// StopDaemon sends SIGTERM to the process recorded in pidFile.
func StopDaemon(pidFile string) error {
	pid, err := readPID(pidFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("daemon not running (PID file not found)")
	case errors.Is(err, errStalePID):
		return err
	case err != nil:
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", pid, err)
	}

	return nil
}

// IsDaemonRunning reports whether the PID recorded in pidFile names a
// live process. Stale and unparsable PID files count as not running;
// stale ones are cleaned up along the way.
func IsDaemonRunning(pidFile string) (bool, error) {
	pid, err := readPID(pidFile)
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, errStalePID):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to read PID file: %w", err)
	}

	if !processAlive(pid) {
		os.Remove(pidFile)
		return false, nil
	}

	return true, nil
}

// RemovePIDFile deletes pidFile; a missing file is not an error. The
// daemon child calls this on its way out.
func RemovePIDFile(pidFile string) error {
	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// readPID parses the process ID recorded in pidFile. A missing file
// surfaces as os.ErrNotExist, unparsable contents as errStalePID.
func readPID(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errStalePID, err)
	}

	return pid, nil
}

// processAlive probes pid with signal 0, which tests for existence
// without disturbing the process.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
