package handshake

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net"
	"strconv"
	"time"
)

// maxHTTPResponseBytes bounds the byte-by-byte response scan of §4.3.3.
const maxHTTPResponseBytes = 2047

// HTTPConnect performs an HTTP CONNECT handshake per spec.md §4.3.3. The
// response is read one byte at a time until the "\r\n\r\n" sentinel appears
// or the buffer is exhausted; this is required because the response has no
// declared length and the socket must not be over-read past the tunnel
// boundary.
func HTTPConnect(conn net.Conn, destHost string, destPort int, username, password string, timeout time.Duration) error {
	hostport := net.JoinHostPort(destHost, strconv.Itoa(destPort))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "CONNECT %s HTTP/1.1\r\n", hostport)
	fmt.Fprintf(&buf, "Host: %s\r\n", hostport)
	if username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		fmt.Fprintf(&buf, "Proxy-Authorization: Basic %s\r\n", cred)
	}
	buf.WriteString("\r\n")

	if err := writeAll(conn, buf.Bytes(), timeout); err != nil {
		return fmt.Errorf("http connect: write request: %w", err)
	}

	resp, err := readHTTPResponse(conn, timeout)
	if err != nil {
		return fmt.Errorf("http connect: read response: %w", err)
	}

	status, err := parseHTTPStatus(resp)
	if err != nil {
		return fmt.Errorf("http connect: %w", err)
	}
	if status != 200 {
		return &RejectedError{Protocol: "http", Code: status}
	}
	return nil
}

// readHTTPResponse reads bytes one at a time until "\r\n\r\n" is seen or the
// buffer is exhausted, per spec.md §4.3.3. Because it reads one byte at a
// time, it never reads past the sentinel: bytes a proxy pipelines after its
// response stay on the connection for the tunnel.
func readHTTPResponse(conn net.Conn, timeout time.Duration) ([]byte, error) {
	var buf bytes.Buffer
	for buf.Len() < maxHTTPResponseBytes {
		b, err := readByte(conn, timeout)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(b)
		if bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\n")) {
			return buf.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("response exceeded %d bytes without terminator", maxHTTPResponseBytes)
}

// parseHTTPStatus extracts the three-digit status code from a response's
// status line, requiring the "HTTP/1." prefix.
func parseHTTPStatus(resp []byte) (int, error) {
	line := resp
	if idx := bytes.IndexByte(resp, '\n'); idx >= 0 {
		line = resp[:idx]
	}
	line = bytes.TrimRight(line, "\r\n")

	const prefix = "HTTP/1."
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return 0, fmt.Errorf("malformed status line %q", line)
	}

	rest := line[len(prefix):]
	spaceIdx := bytes.IndexByte(rest, ' ')
	if spaceIdx < 0 || len(rest) < spaceIdx+4 {
		return 0, fmt.Errorf("malformed status line %q", line)
	}
	codeBytes := rest[spaceIdx+1 : spaceIdx+4]
	status, err := strconv.Atoi(string(codeBytes))
	if err != nil {
		return 0, fmt.Errorf("malformed status code in %q", line)
	}
	return status, nil
}
