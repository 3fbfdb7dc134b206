//go:build unix

package dialer

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// isErrnoTimeout reports whether err ultimately wraps ETIMEDOUT: a TCP
// connect can fail this way after the kernel exhausts its own SYN retries,
// which is a timeout in spirit even though net.Error.Timeout() does not
// always report true for it.
func isErrnoTimeout(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == unix.ETIMEDOUT
}
