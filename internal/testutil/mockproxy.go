// Package testutil provides fixtures shared by the handshake, dialer, and
// validator test suites: a single-accept TCP listener helper and a scripted
// mock proxy server driven by expect/reply byte steps, used to assert the
// wire-exactness properties required of the handshake state machines.
package testutil

import (
	"fmt"
	"net"
	"testing"
)

// Step is one round of a scripted proxy conversation: the server first
// reads exactly len(Expect) bytes and compares them byte-for-byte against
// Expect, then writes Reply. A Step with a nil Expect only writes.
type Step struct {
	Expect []byte
	Reply  []byte
}

// StartScriptedProxy starts a single-accept TCP listener that plays back
// script against whatever connects to it, then closes. Any mismatch between
// what the client sent and step.Expect is reported via t.Errorf from the
// server goroutine. Returns the listener; callers dial it directly.
func StartScriptedProxy(t *testing.T, script []Step) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for i, step := range script {
			if len(step.Expect) > 0 {
				got := make([]byte, len(step.Expect))
				if _, err := readFull(conn, got); err != nil {
					t.Errorf("scripted proxy step %d: read: %v", i, err)
					return
				}
				if string(got) != string(step.Expect) {
					t.Errorf("scripted proxy step %d: got %q, want %q", i, got, step.Expect)
					return
				}
			}
			if len(step.Reply) > 0 {
				if _, err := conn.Write(step.Reply); err != nil {
					t.Errorf("scripted proxy step %d: write: %v", i, err)
					return
				}
			}
		}
	}()

	return ln
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, fmt.Errorf("short read at %d/%d: %w", total, len(buf), err)
		}
	}
	return total, nil
}

// DialScriptedProxy connects to a listener started by StartScriptedProxy.
func DialScriptedProxy(t *testing.T, ln net.Listener) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	return conn
}
