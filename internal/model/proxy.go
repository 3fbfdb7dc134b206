// Package model holds the canonical Proxy record shared by every component
// in the proxy subsystem: the parser produces it, the pool orders it, the
// dialer consumes it, and the validator mutates its validation fields.
package model

import (
	"fmt"
	"net"

	"github.com/vex-bnc/proxycore/internal/proxytype"
)

// Proxy is one upstream relay. It is created by the parser, its validation
// fields are written by the validator (and IsActive by MarkFailed), and it
// is destroyed only through the Pool's delete path. The dialer reads it but
// does not modify it.
type Proxy struct {
	Host     string
	Port     int
	Username string
	Password string

	DeclaredType proxytype.Type

	// ResolvedIP is the result of name resolution performed at parse time.
	// Exactly one of IPv4/IPv6 is represented; IsIPv6 records which.
	ResolvedIP net.IP
	IsIPv6     bool

	// Validation state, written by the validator; MarkFailed clears
	// IsActive.
	Validated    bool
	IsActive     bool
	DetectedType proxytype.Type
	LastRTTMs    int64
	HasAuth      bool
}

// HasCredentials reports whether the proxy carries a non-empty username.
// Password-only credentials are not representable (see invariant below).
func (p *Proxy) HasCredentials() bool {
	return p.Username != ""
}

// DialAddr returns the proxy's resolved address in host:port form, suitable
// for net.Dial. It uses the resolved IP, never the original hostname, so
// resolution happens exactly once, at parse time.
func (p *Proxy) DialAddr() string {
	return net.JoinHostPort(p.ResolvedIP.String(), fmt.Sprintf("%d", p.Port))
}

// MarkFailed marks a proxy inactive after a caller has found it unreachable
// outside of a validation sweep. Only IsActive is cleared; Validated,
// DetectedType and LastRTTMs are left as they are. It does not remove the
// proxy from its pool; callers decide whether to do that.
func (p *Proxy) MarkFailed() {
	p.IsActive = false
}

// CanonicalLine renders the proxy in the saved-pool canonical form:
//
//	[scheme://][user:pass@]host:port
//
// scheme is derived from DetectedType (empty if None); the credentials
// block is emitted only when both username and password are non-empty.
func (p *Proxy) CanonicalLine() string {
	host := p.Host
	if host == "" {
		host = p.ResolvedIP.String()
	}

	hostport := net.JoinHostPort(host, fmt.Sprintf("%d", p.Port))

	cred := ""
	if p.Username != "" && p.Password != "" {
		cred = p.Username + ":" + p.Password + "@"
	}

	scheme := p.DetectedType.Scheme()
	if scheme == "" {
		return cred + hostport
	}
	return scheme + "://" + cred + hostport
}

// Invariant checks the invariants of spec.md §3 and returns the first
// violation found, or nil.
func (p *Proxy) Invariant() error {
	if p.Host == "" {
		return fmt.Errorf("proxy: empty host")
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("proxy: port %d out of range", p.Port)
	}
	if p.ResolvedIP == nil {
		return fmt.Errorf("proxy: no resolved address")
	}
	if p.Password != "" && p.Username == "" {
		return fmt.Errorf("proxy: password set without username")
	}
	if !p.Validated {
		if p.IsActive || p.DetectedType != proxytype.None || p.LastRTTMs != 0 {
			return fmt.Errorf("proxy: unvalidated proxy carries validation state")
		}
	} else if p.DetectedType == proxytype.None {
		return fmt.Errorf("proxy: validated proxy has no detected type")
	}
	return nil
}
