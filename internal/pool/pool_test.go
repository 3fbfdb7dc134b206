package pool

import (
	"net"
	"testing"

	"github.com/vex-bnc/proxycore/internal/model"
	"github.com/vex-bnc/proxycore/internal/proxytype"
)

func mkProxy(host string, port int) *model.Proxy {
	return &model.Proxy{Host: host, Port: port, ResolvedIP: net.ParseIP(host)}
}

func TestNext_RoundRobinFairness(t *testing.T) {
	p := NewFromProxies([]*model.Proxy{mkProxy("10.0.0.1", 1), mkProxy("10.0.0.2", 2), mkProxy("10.0.0.3", 3)})

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		proxy, ok := p.Next()
		if !ok {
			t.Fatalf("expected a proxy at step %d", i)
		}
		seen[proxy.Host] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct hosts visited, got %d", len(seen))
	}

	p2 := NewFromProxies([]*model.Proxy{mkProxy("10.0.0.1", 1), mkProxy("10.0.0.2", 2), mkProxy("10.0.0.3", 3)})
	var first *model.Proxy
	for i := 0; i < 4; i++ {
		proxy, _ := p2.Next()
		if i == 0 {
			first = proxy
		}
		if i == 3 && proxy.Host != first.Host {
			t.Fatalf("4th call should wrap to the same entry as the 1st, got %s want %s", proxy.Host, first.Host)
		}
	}
}

func TestClear_Idempotent(t *testing.T) {
	p := NewFromProxies([]*model.Proxy{mkProxy("10.0.0.1", 1)})
	p.Clear()
	p.Clear()
	if p.Count() != 0 {
		t.Fatalf("expected empty pool after double clear, got %d", p.Count())
	}
}

func TestNext_PreSweepReturnsAnyProxy(t *testing.T) {
	proxies := []*model.Proxy{mkProxy("10.0.0.1", 1)}
	proxies[0].Validated = false
	p := NewFromProxies(proxies)

	proxy, ok := p.Next()
	if !ok || proxy == nil {
		t.Fatalf("expected pre-sweep Next to return the sole entry regardless of validation state")
	}
}

func TestNext_PostSweepFiltersToValidatedActive(t *testing.T) {
	dead := mkProxy("10.0.0.1", 1)
	live := mkProxy("10.0.0.2", 2)
	live.Validated = true
	live.IsActive = true
	live.DetectedType = proxytype.SOCKS5

	p := NewFromProxies([]*model.Proxy{dead, live})
	p.MarkSwept()

	for i := 0; i < 4; i++ {
		proxy, ok := p.Next()
		if !ok {
			t.Fatalf("expected a usable proxy at step %d", i)
		}
		if proxy.Host != "10.0.0.2" {
			t.Fatalf("expected only the validated/active proxy to be returned, got %s", proxy.Host)
		}
	}
}

func TestRemoveAll_TwoPhaseSweep(t *testing.T) {
	keep := mkProxy("10.0.0.1", 1)
	keep.Validated = true
	drop1 := mkProxy("10.0.0.2", 2)
	drop2 := mkProxy("10.0.0.3", 3)

	p := NewFromProxies([]*model.Proxy{drop1, keep, drop2})
	removed := p.RemoveAll(func(proxy *model.Proxy) bool { return proxy.Validated })

	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if p.Count() != 1 {
		t.Fatalf("expected 1 remaining, got %d", p.Count())
	}
	survivor, ok := p.Next()
	if !ok || survivor.Host != "10.0.0.1" {
		t.Fatalf("expected survivor to be 10.0.0.1, got %+v", survivor)
	}
}

func TestCanonicalLine_SOCKS5WithCredentials(t *testing.T) {
	proxy := mkProxy("203.0.113.9", 1080)
	proxy.Username = "u"
	proxy.Password = "p"
	proxy.DetectedType = proxytype.SOCKS5

	if got, want := proxy.CanonicalLine(), "socks5://u:p@203.0.113.9:1080"; got != want {
		t.Fatalf("CanonicalLine() = %q, want %q", got, want)
	}
}
