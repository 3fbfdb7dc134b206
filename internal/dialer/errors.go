package dialer

import "fmt"

// ConnectTimeoutError means the TCP connect to the proxy itself did not
// complete within Config.ConnectTimeout (spec.md §4.4 step 2).
type ConnectTimeoutError struct {
	Addr string
}

func (e *ConnectTimeoutError) Error() string {
	return fmt.Sprintf("connect to %s: timed out", e.Addr)
}

// ConnectRefusedError wraps the connect-level failure reported once the
// socket settles (spec.md §4.4 step 3, the SO_ERROR check's Go analogue).
type ConnectRefusedError struct {
	Addr string
	Err  error
}

func (e *ConnectRefusedError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectRefusedError) Unwrap() error { return e.Err }
