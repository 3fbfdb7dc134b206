// Package validator implements the concurrent reachability and protocol
// auto-detection sweep of spec.md §4.5: a worker pool drains the pool's
// proxies, probes each against a caller-supplied test destination, and
// records the outcome on the proxy itself. Three independent locks guard
// the work-index counter, the aggregate stats, and log output, matching the
// shared-state model of spec.md §5.
package validator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vex-bnc/proxycore/internal/dialer"
	"github.com/vex-bnc/proxycore/internal/logging"
	"github.com/vex-bnc/proxycore/internal/model"
	"github.com/vex-bnc/proxycore/internal/pool"
	"github.com/vex-bnc/proxycore/internal/proxytype"
)

// Config controls the sweep. TestHost/TestPort name the destination each
// candidate proxy must successfully CONNECT to in order to be considered
// reachable.
type Config struct {
	Concurrency int
	TestHost    string
	TestPort    int
	DialerCfg   dialer.Config
}

// Stats aggregates sweep-wide counters, guarded by its own lock during the
// sweep and returned as a plain value once the sweep has completed.
type Stats struct {
	Working int
	Removed int
	PerType map[proxytype.Type]int
}

// Run drains p, probing every proxy concurrently with cfg.Concurrency
// workers, then removes every proxy that did not validate. It returns the
// surviving working count, or -1 if the pool was empty at entry, per
// spec.md §4.5.
func Run(ctx context.Context, p *pool.Pool, cfg Config, log logging.Logger) (int, error) {
	snapshot := p.Snapshot()
	if len(snapshot) == 0 {
		return -1, nil
	}

	idx := &indexCounter{}
	stats := &statsCounter{perType: make(map[proxytype.Type]int)}
	logMu := &sync.Mutex{}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(snapshot) {
		concurrency = len(snapshot)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			return worker(gctx, snapshot, idx, stats, logMu, cfg, log)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	removed := p.RemoveAll(func(proxy *model.Proxy) bool {
		return proxy.Validated && proxy.IsActive
	})
	p.MarkSwept()

	final := stats.snapshot()
	final.Removed = removed

	logMu.Lock()
	log.Info("validation sweep complete", map[string]any{
		"working": final.Working,
		"removed": final.Removed,
	})
	logMu.Unlock()

	return final.Working, nil
}

// indexCounter guards the shared next-work-index, the validator's "index
// lock" (spec.md §5).
type indexCounter struct {
	mu  sync.Mutex
	cur int
}

func (c *indexCounter) next(n int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur >= n {
		return 0, false
	}
	i := c.cur
	c.cur++
	return i, true
}

// statsCounter guards the aggregate working/per-protocol counts, the
// validator's "stats lock".
type statsCounter struct {
	mu      sync.Mutex
	working int
	perType map[proxytype.Type]int
}

func (s *statsCounter) recordSuccess(t proxytype.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working++
	s.perType[t]++
}

func (s *statsCounter) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Stats{Working: s.working, PerType: make(map[proxytype.Type]int, len(s.perType))}
	for k, v := range s.perType {
		out.PerType[k] = v
	}
	return out
}

// worker repeatedly claims the next unclaimed index from idx and validates
// that proxy until the snapshot is exhausted. Locks are never held across
// I/O or across each other.
func worker(ctx context.Context, snapshot []*model.Proxy, idx *indexCounter, stats *statsCounter, logMu *sync.Mutex, cfg Config, log logging.Logger) error {
	for {
		i, ok := idx.next(len(snapshot))
		if !ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		proxy := snapshot[i]
		validateOne(ctx, proxy, stats, logMu, cfg, log)
	}
}

// validateOne dispatches to the declared-type path or the auto-detect path
// for a single proxy, per spec.md §4.5 item 2. It never touches another
// worker's proxy, so no lock is needed around the proxy's own fields.
func validateOne(ctx context.Context, proxy *model.Proxy, stats *statsCounter, logMu *sync.Mutex, cfg Config, log logging.Logger) {
	logMu.Lock()
	log.Info("validating proxy", map[string]any{"host": proxy.Host, "port": proxy.Port})
	logMu.Unlock()

	start := time.Now()

	var t proxytype.Type
	var connectRTT time.Duration
	var ok bool
	if proxy.DeclaredType != proxytype.None {
		t, connectRTT, ok = validateDeclared(ctx, proxy, cfg)
	} else {
		t, connectRTT, ok = validateAutoDetect(ctx, proxy, cfg)
	}

	if ok {
		proxy.Validated = true
		proxy.IsActive = true
		proxy.DetectedType = t
		proxy.LastRTTMs = connectRTT.Milliseconds()
		proxy.HasAuth = proxy.HasCredentials()

		stats.recordSuccess(t)

		logMu.Lock()
		log.Success("proxy validated", map[string]any{
			"host": proxy.Host, "port": proxy.Port, "type": t.String(),
			"rtt_ms": proxy.LastRTTMs, "elapsed_ms": time.Since(start).Milliseconds(),
		})
		logMu.Unlock()
		return
	}

	proxy.Validated = false
	proxy.IsActive = false
	proxy.DetectedType = proxytype.None
	proxy.LastRTTMs = 0

	logMu.Lock()
	log.Error("proxy removed", nil, map[string]any{
		"host": proxy.Host, "port": proxy.Port, "elapsed_ms": time.Since(start).Milliseconds(),
	})
	logMu.Unlock()
}

// validateDeclared tries only the proxy's declared type. It is the entire
// declared-type path of spec.md §4.5 item 2 — there is no loop here, because
// there is never more than one candidate to try.
func validateDeclared(ctx context.Context, proxy *model.Proxy, cfg Config) (proxytype.Type, time.Duration, bool) {
	t := proxy.DeclaredType
	attemptCtx, cancel := context.WithTimeout(ctx, sweepBudget(cfg.DialerCfg))
	defer cancel()

	res, err := dialer.DialAs(attemptCtx, cfg.DialerCfg, proxy, t, cfg.TestHost, cfg.TestPort)
	if err != nil {
		return proxytype.None, 0, false
	}
	res.Conn.Close()
	return t, res.ConnectRTT, true
}

// validateAutoDetect tries SOCKS5, then SOCKS4, then HTTP, in the fixed
// order spec.md §4.5 item 2 mandates, stopping at the first success. This is
// the only path in the validator that loops over more than one candidate
// type.
func validateAutoDetect(ctx context.Context, proxy *model.Proxy, cfg Config) (proxytype.Type, time.Duration, bool) {
	for _, t := range proxytype.AutoDetectOrder() {
		attemptCtx, cancel := context.WithTimeout(ctx, sweepBudget(cfg.DialerCfg))
		res, err := dialer.DialAs(attemptCtx, cfg.DialerCfg, proxy, t, cfg.TestHost, cfg.TestPort)
		cancel()
		if err != nil {
			continue
		}
		res.Conn.Close()
		return t, res.ConnectRTT, true
	}
	return proxytype.None, 0, false
}

// sweepBudget is the context deadline given to a single protocol attempt:
// connect timeout plus one handshake timeout. DialAs applies the context to
// the TCP connect only; each handshake read or write is bounded separately
// by HandshakeTimeout. validateAutoDetect makes up to three attempts, each
// with its own connect, so time per proxy is not capped at
// connect_timeout + 3*handshake_timeout.
func sweepBudget(cfg dialer.Config) time.Duration {
	return cfg.ConnectTimeout + cfg.HandshakeTimeout
}
