package testutil

import (
	"net"
	"testing"
)

// StartHangingListener accepts connections and never writes or reads,
// simulating a proxy whose connect succeeds at the TCP level but whose
// handshake never completes. Used to exercise the validator's per-proxy
// timeout bound.
func StartHangingListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn // held open, never serviced
		}
	}()
	return ln
}
