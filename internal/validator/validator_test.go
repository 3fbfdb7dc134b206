package validator

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/vex-bnc/proxycore/internal/dialer"
	"github.com/vex-bnc/proxycore/internal/logging"
	"github.com/vex-bnc/proxycore/internal/model"
	"github.com/vex-bnc/proxycore/internal/pool"
	"github.com/vex-bnc/proxycore/internal/proxytype"
	"github.com/vex-bnc/proxycore/internal/testutil"
)

type nullLogger struct{}

var _ logging.Logger = nullLogger{}

func (nullLogger) Info(string, map[string]any)         {}
func (nullLogger) Success(string, map[string]any)      {}
func (nullLogger) Error(string, error, map[string]any) {}

func proxyForListener(t *testing.T, ln net.Listener, declared proxytype.Type) *model.Proxy {
	t.Helper()
	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return &model.Proxy{
		Host:         host,
		Port:         port,
		DeclaredType: declared,
		ResolvedIP:   net.ParseIP(host),
	}
}

func socks4GrantScript(destHost string, destPort int) []testutil.Step {
	port := byte(destPort >> 8)
	portLo := byte(destPort)
	ip := net.ParseIP(destHost).To4()
	req := append([]byte{0x04, 0x01, port, portLo}, ip...)
	req = append(req, 0x00)
	return []testutil.Step{
		{Expect: req, Reply: []byte{0x00, 0x5A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}
}

// TestRun_AtomicityAndRemoval reproduces spec.md §8 scenario 6: with three
// proxies (two reachable, one hanging), concurrency=3 and a 500ms connect
// timeout, the sweep must finish well under 2s and the hanging proxy must
// be removed while the other two survive validated.
func TestRun_AtomicityAndRemoval(t *testing.T) {
	good1 := testutil.StartScriptedProxy(t, socks4GrantScript("93.184.216.34", 80))
	defer good1.Close()
	good2 := testutil.StartScriptedProxy(t, socks4GrantScript("93.184.216.34", 80))
	defer good2.Close()
	hanging := testutil.StartHangingListener(t)
	defer hanging.Close()

	proxies := []*model.Proxy{
		proxyForListener(t, good1, proxytype.SOCKS4),
		proxyForListener(t, hanging, proxytype.SOCKS4),
		proxyForListener(t, good2, proxytype.SOCKS4),
	}
	p := pool.NewFromProxies(proxies)

	cfg := Config{
		Concurrency: 3,
		TestHost:    "93.184.216.34",
		TestPort:    80,
		DialerCfg: dialer.Config{
			ConnectTimeout:   500 * time.Millisecond,
			HandshakeTimeout: 500 * time.Millisecond,
		},
	}

	start := time.Now()
	working, err := Run(context.Background(), p, cfg, nullLogger{})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("sweep took %v, want < 2s", elapsed)
	}
	if working != 2 {
		t.Fatalf("expected 2 working proxies, got %d", working)
	}
	if p.Count() != 2 {
		t.Fatalf("expected pool to retain 2 proxies, got %d", p.Count())
	}

	for _, proxy := range p.Snapshot() {
		if !(proxy.Validated && proxy.IsActive && proxy.DetectedType != proxytype.None) {
			t.Fatalf("surviving proxy violates atomicity invariant: %+v", proxy)
		}
	}
}

func TestRun_EmptyPoolReturnsNegativeOne(t *testing.T) {
	p := pool.New()
	cfg := Config{Concurrency: 2, TestHost: "93.184.216.34", TestPort: 80}
	working, err := Run(context.Background(), p, cfg, nullLogger{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if working != -1 {
		t.Fatalf("expected -1 for empty pool, got %d", working)
	}
}
