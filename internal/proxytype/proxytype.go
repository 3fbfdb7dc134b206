// Package proxytype defines the small protocol enum shared by the parser,
// pool, handshake engine, dialer, and validator.
package proxytype

import "strings"

// Type identifies a proxy's declared or detected protocol.
type Type int

const (
	None Type = iota
	HTTP
	HTTPS
	SOCKS4
	SOCKS5
)

// String returns the lowercase scheme name, or "none" for None.
func (t Type) String() string {
	switch t {
	case HTTP:
		return "http"
	case HTTPS:
		return "https"
	case SOCKS4:
		return "socks4"
	case SOCKS5:
		return "socks5"
	default:
		return "none"
	}
}

// Scheme returns the URL scheme used in saved-pool output, or "" for None.
func (t Type) Scheme() string {
	if t == None {
		return ""
	}
	return t.String()
}

// ParseScheme maps a case-insensitive scheme token (as found in a
// "scheme://" prefix) to a Type. ok is false for unrecognized schemes.
func ParseScheme(s string) (Type, bool) {
	switch strings.ToLower(s) {
	case "http":
		return HTTP, true
	case "https":
		return HTTPS, true
	case "socks4":
		return SOCKS4, true
	case "socks5":
		return SOCKS5, true
	default:
		return None, false
	}
}

// AutoDetectOrder is the sequence of protocols the validator tries, in
// order, when a proxy's declared type is None.
func AutoDetectOrder() []Type {
	return []Type{SOCKS5, SOCKS4, HTTP}
}
