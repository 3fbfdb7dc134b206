// Package pool implements the ordered proxy collection with a round-robin
// cursor described in spec.md §3 and §4.2.
package pool

import (
	"fmt"
	"os"
	"sync"

	"github.com/vex-bnc/proxycore/internal/model"
	"github.com/vex-bnc/proxycore/internal/parser"
	"github.com/vex-bnc/proxycore/internal/proxytype"
)

// Pool is an ordered sequence of *model.Proxy with a round-robin cursor.
// Pool mutations (Load, Clear, Remove, SaveValidated) are only safe to call
// from the controlling goroutine while no validator workers are live; see
// spec.md §5. Next is safe to call concurrently with itself.
type Pool struct {
	mu sync.Mutex

	proxies []*model.Proxy
	cursor  int // index of the last entry returned by Next; -1 if unset

	sourcePath  string
	defaultType proxytype.Type

	// swept becomes true once a validation sweep has completed at least
	// once against this pool's current contents. Before the first sweep,
	// Next() treats every proxy as usable (spec.md §9 open question); after,
	// it filters to Validated && IsActive.
	swept bool
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{cursor: -1}
}

// NewFromProxies builds a pool directly from already-resolved proxies,
// bypassing LoadFile. Used by callers that construct Proxy records
// programmatically (tests, or a future non-file proxy source).
func NewFromProxies(proxies []*model.Proxy) *Pool {
	return &Pool{proxies: proxies, cursor: -1}
}

// Load replaces the pool's contents from path, using defaultType as the
// fallback declared type for lines with no scheme prefix. Lines that fail
// to parse are skipped, not fatal. On success the pool remembers path and
// defaultType, readable through SourcePath and DefaultType.
func (p *Pool) Load(path string, defaultType proxytype.Type) (int, []error) {
	proxies, errs := parser.LoadFile(path, defaultType)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.proxies = proxies
	p.cursor = -1
	p.sourcePath = path
	p.defaultType = defaultType
	p.swept = false

	return len(proxies), errs
}

// Clear empties the pool.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.proxies = nil
	p.cursor = -1
	p.swept = false
}

// Count returns the number of proxies currently in the pool.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// SourcePath and DefaultType expose the pool's remembered load parameters.
func (p *Pool) SourcePath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sourcePath
}

func (p *Pool) DefaultType() proxytype.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaultType
}

// Next advances the round-robin cursor and returns the next usable proxy.
// Before any validation sweep has completed, every proxy is usable; after,
// only entries with Validated && IsActive are considered, and dead entries
// are skipped. It wraps at the tail. ok is false if no usable entry exists.
func (p *Pool) Next() (proxy *model.Proxy, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.proxies)
	if n == 0 {
		return nil, false
	}

	start := p.cursor
	for i := 0; i < n; i++ {
		idx := (start + 1 + i) % n
		cand := p.proxies[idx]
		if p.swept && !(cand.Validated && cand.IsActive) {
			continue
		}
		p.cursor = idx
		return cand, true
	}
	return nil, false
}

// Remove unlinks proxy from the pool. If it was the cursor position, the
// cursor is left pointing at the predecessor so the next Next() call
// advances onto the entry that took its place (or wraps to head).
func (p *Pool) Remove(proxy *model.Proxy) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, cand := range p.proxies {
		if cand != proxy {
			continue
		}
		p.proxies = append(p.proxies[:i], p.proxies[i+1:]...)
		switch {
		case len(p.proxies) == 0:
			p.cursor = -1
		case i <= p.cursor:
			p.cursor--
			if p.cursor < -1 {
				p.cursor = len(p.proxies) - 1
			}
		}
		return true
	}
	return false
}

// RemoveAll unlinks every proxy for which keep returns false, using a
// two-phase collect-then-apply sweep so callers (notably the validator) can
// decide deletions while iterating a stable snapshot without corrupting the
// pool's own iteration state.
func (p *Pool) RemoveAll(keep func(*model.Proxy) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.proxies[:0:0]
	removed := 0
	for _, cand := range p.proxies {
		if keep(cand) {
			kept = append(kept, cand)
		} else {
			removed++
		}
	}
	p.proxies = kept
	p.cursor = -1
	return removed
}

// MarkSwept records that a validation sweep has completed, switching
// Next()'s filtering policy from "any proxy" to "validated and active".
func (p *Pool) MarkSwept() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.swept = true
}

// Snapshot returns a stable copy of the pool's current contents, for the
// validator to index into without holding the pool lock during I/O.
func (p *Pool) Snapshot() []*model.Proxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*model.Proxy, len(p.proxies))
	copy(out, p.proxies)
	return out
}

// SaveValidated writes one line per proxy to path, in the canonical form
// "[scheme://][user:pass@]host:port" using each proxy's DetectedType.
func (p *Pool) SaveValidated(path string) error {
	p.mu.Lock()
	lines := make([]string, 0, len(p.proxies))
	for _, proxy := range p.proxies {
		lines = append(lines, proxy.CanonicalLine())
	}
	p.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create saved proxy file: %w", err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("write saved proxy file: %w", err)
		}
	}
	return nil
}
