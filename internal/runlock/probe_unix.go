//go:build unix

package runlock

import (
	"errors"

	"golang.org/x/sys/unix"
)

// processAlive probes pid with a null signal. A permission error means the
// process exists but belongs to another user, which still counts as alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
