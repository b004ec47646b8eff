// Package pidfile keeps two processes from simulating the same save.
package pidfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when a live process holds the lock
type ErrLocked struct {
	Path string
	PID  int
}

func (e *ErrLocked) Error() string {
	return fmt.Sprintf("simulation is already running (PID %d, lock %s)", e.PID, e.Path)
}

// PIDFile is an exclusive lock backed by a file holding the owner's PID
type PIDFile struct {
	path string
	pid  int
}

// New creates a lock for path owned by the current process
func New(path string) *PIDFile {
	return &PIDFile{path: path, pid: os.Getpid()}
}

// Path returns the lock file location
func (p *PIDFile) Path() string { return p.path }

// Acquire creates the lock file. A stale file left by a dead process or
// holding garbage is replaced; a live owner yields *ErrLocked.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", p.pid)
			cerr := f.Close()
			if werr != nil {
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			if cerr != nil {
				return fmt.Errorf("failed to write PID file: %w", cerr)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		owner, ok := p.owner()
		if ok && owner != p.pid && isProcessRunning(owner) {
			return &ErrLocked{Path: p.path, PID: owner}
		}
		if ok && owner == p.pid {
			return nil
		}
		// Stale or unreadable lock
		_ = os.Remove(p.path)
	}
	return fmt.Errorf("failed to acquire PID file %s", p.path)
}

// Release removes the lock if this process owns it
func (p *PIDFile) Release() error {
	owner, ok := p.owner()
	if ok && owner != p.pid {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) owner() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isProcessRunning sends signal 0, which only checks that the process exists
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// Exists but owned by another user
		return true
	default:
		return false
	}
}
