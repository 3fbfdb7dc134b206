package dialer

import "time"

// Config carries the two timeout budgets spec.md §4.4 names: ConnectTimeout
// bounds the non-blocking TCP connect to the proxy itself; HandshakeTimeout
// bounds each framed read/write of the protocol handshake run over that
// connection.
type Config struct {
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
}

// DefaultConfig matches spec.md §4.4's stated default connect timeout.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:   30 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}
