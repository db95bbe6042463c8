// Package runlock enforces single-instance execution through an advisory
// lock record on disk.
//
// The record is two newline-terminated lines: the holder pid and the
// acquisition timestamp. Its existence is the mutual-exclusion signal;
// validity is decided by probing the holder's liveness, never by age, so a
// record left behind by a crashed run is reclaimed on the next invocation.
package runlock

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"postbundle/internal/errs"
	"postbundle/internal/logging"
)

// AliveProbe reports whether the process with the given pid exists. It must
// answer true when existence cannot be determined, so a doubtful record is
// never reclaimed from under a live holder.
type AliveProbe func(pid int) bool

// Guard owns the lock record for one run.
type Guard struct {
	path   string
	alive  AliveProbe
	logger *slog.Logger
}

// Option customizes guard construction.
type Option func(*Guard)

// WithAliveProbe substitutes the holder liveness probe, primarily for tests.
func WithAliveProbe(probe AliveProbe) Option {
	return func(g *Guard) {
		if probe != nil {
			g.alive = probe
		}
	}
}

// New constructs a guard for the lock record at path.
func New(path string, logger *slog.Logger, opts ...Option) *Guard {
	guard := &Guard{
		path:   path,
		alive:  processAlive,
		logger: logging.WithComponent(logger, "runlock"),
	}
	for _, opt := range opts {
		opt(guard)
	}
	return guard
}

// Path returns the lock record location.
func (g *Guard) Path() string {
	return g.path
}

// Acquire attempts to take the run lock. It never blocks: the exclusive
// create either succeeds, reclaims a stale record and retries once, or
// fails with errs.ErrLockHeld when the recorded holder is alive.
func (g *Guard) Acquire() error {
	err := g.create()
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return errs.Wrap(errs.ErrFilesystem, "locking", "create lock record", "", err)
	}

	pid, readErr := g.readHolder()
	if readErr == nil && g.alive(pid) {
		return errs.Wrap(errs.ErrLockHeld, "locking", "acquire", fmt.Sprintf("held by pid %d", pid), nil)
	}
	if readErr != nil {
		g.logger.Warn("reclaiming unreadable lock record", logging.String("path", g.path), logging.Error(readErr))
	} else {
		g.logger.Info("reclaiming stale lock record", logging.String("path", g.path), logging.Int("holder_pid", pid))
	}

	if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(errs.ErrFilesystem, "locking", "remove stale lock", "", err)
	}
	if err := g.create(); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Another instance won the re-create race.
			return errs.Wrap(errs.ErrLockHeld, "locking", "acquire", "lock recreated by another instance", nil)
		}
		return errs.Wrap(errs.ErrFilesystem, "locking", "recreate lock record", "", err)
	}
	return nil
}

// Release removes the lock record. It is idempotent and safe to defer on
// every exit path.
func (g *Guard) Release() {
	if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		g.logger.Warn("failed to release run lock", logging.String("path", g.path), logging.Error(err))
	}
}

func (g *Guard) create() error {
	file, err := os.OpenFile(g.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	record := fmt.Sprintf("%d\n%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	if _, err := file.WriteString(record); err != nil {
		file.Close()
		_ = os.Remove(g.path)
		return err
	}
	return file.Close()
}

func (g *Guard) readHolder() (int, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return 0, err
	}
	lines := bytes.SplitN(data, []byte("\n"), 2)
	if len(lines) == 0 {
		return 0, errors.New("empty lock record")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(lines[0])))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("corrupt lock record holder %q", strings.TrimSpace(string(lines[0])))
	}
	return pid, nil
}
