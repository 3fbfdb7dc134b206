package handshake

import "fmt"

// Sentinel errors for the framed timed I/O primitive (spec.md §4.3.4).
// They are returned verbatim (wrapped with context via fmt.Errorf %w) by
// readFull/writeAll and by every handshake state machine.
var (
	// ErrTimeout means a readiness/deadline wait expired before the full
	// transfer completed.
	ErrTimeout = fmt.Errorf("handshake: timeout")

	// ErrPeerClosed means the remote end closed the connection before the
	// requested number of bytes were read.
	ErrPeerClosed = fmt.Errorf("handshake: peer closed connection")
)

// RejectedError means the proxy refused the request at the protocol level
// (a SOCKS status other than "granted", or an HTTP status other than 200).
type RejectedError struct {
	Protocol string
	Code     int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: rejected (code %d)", e.Protocol, e.Code)
}

// AuthFailedError is terminal for a proxy's configured credentials; callers
// must not retry with a different auth method against the same proxy.
type AuthFailedError struct {
	Protocol string
}

func (e *AuthFailedError) Error() string {
	return fmt.Sprintf("%s: authentication failed", e.Protocol)
}

// NoAcceptableMethodError means a SOCKS5 server rejected every offered auth
// method (server replied with method 0xFF). Terminal for that proxy.
type NoAcceptableMethodError struct{}

func (e *NoAcceptableMethodError) Error() string {
	return "socks5: no acceptable authentication method"
}
