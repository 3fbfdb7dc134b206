//go:build !unix

package dialer

// isErrnoTimeout always returns false on non-unix platforms; the portable
// net.Error.Timeout() check in classifyConnectError is all that is
// available there.
func isErrnoTimeout(err error) bool {
	return false
}
