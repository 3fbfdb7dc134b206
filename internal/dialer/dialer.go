// Package dialer implements spec.md §4.4: connect to a proxy with a bounded
// timeout, classify the outcome, then dispatch to the handshake state
// machine for the proxy's protocol.
package dialer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/vex-bnc/proxycore/internal/handshake"
	"github.com/vex-bnc/proxycore/internal/model"
	"github.com/vex-bnc/proxycore/internal/proxytype"
)

// Result is the outcome of a successful dial: the tunnel, ready to carry
// traffic, plus the duration of the TCP connect to the proxy itself —
// spec.md §4.5 item 5's "connect RTT", kept distinct from the handshake
// time that follows it.
type Result struct {
	Conn       net.Conn
	ConnectRTT time.Duration
}

// Dial connects through proxy to destHost:destPort, dispatching on the
// proxy's declared type (or, if undeclared, its previously detected type).
// On any failure the underlying connection is closed before returning.
func Dial(ctx context.Context, cfg Config, proxy *model.Proxy, destHost string, destPort int) (*Result, error) {
	t := proxy.DeclaredType
	if t == proxytype.None {
		t = proxy.DetectedType
	}
	return DialAs(ctx, cfg, proxy, t, destHost, destPort)
}

// DialAs connects through proxy and runs the handshake for asType
// explicitly, regardless of the proxy's declared/detected type. The
// validator uses this to probe each candidate protocol in turn during
// auto-detection (spec.md §4.5).
func DialAs(ctx context.Context, cfg Config, proxy *model.Proxy, asType proxytype.Type, destHost string, destPort int) (*Result, error) {
	addr := proxy.DialAddr()

	nd := net.Dialer{Timeout: cfg.ConnectTimeout}
	connectStart := time.Now()
	conn, err := nd.DialContext(ctx, "tcp", addr)
	connectRTT := time.Since(connectStart)
	if err != nil {
		return nil, classifyConnectError(addr, err)
	}

	if err := runHandshake(conn, asType, destHost, destPort, proxy.Username, proxy.Password, cfg.HandshakeTimeout); err != nil {
		conn.Close()
		return nil, err
	}

	return &Result{Conn: conn, ConnectRTT: connectRTT}, nil
}

// runHandshake dispatches to the appropriate state machine in package
// handshake. HTTPS is handled identically to HTTP at this layer: the scheme
// is a classification label, not a TLS client (spec.md §1 Non-goals).
func runHandshake(conn net.Conn, t proxytype.Type, destHost string, destPort int, username, password string, timeout time.Duration) error {
	switch t {
	case proxytype.SOCKS4:
		return handshake.SOCKS4Connect(conn, destHost, destPort, username, timeout)
	case proxytype.SOCKS5:
		return handshake.SOCKS5Connect(conn, destHost, destPort, username, password, timeout)
	case proxytype.HTTP, proxytype.HTTPS:
		return handshake.HTTPConnect(conn, destHost, destPort, username, password, timeout)
	default:
		return fmt.Errorf("dialer: no handshake for proxy type %q", t)
	}
}

func classifyConnectError(addr string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ConnectTimeoutError{Addr: addr}
	}
	if isErrnoTimeout(err) {
		return &ConnectTimeoutError{Addr: addr}
	}
	return &ConnectRefusedError{Addr: addr, Err: err}
}
