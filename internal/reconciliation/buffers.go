package reconciliation

import (
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shsdb/reconciler/internal/domain"
)

// pendingReports holds the reports waiting for reference data, keyed by
// report key so a redelivered report is a no-op. Retired keys belong to
// reports already joined and are never admitted again.
type pendingReports struct {
	mu      sync.Mutex
	items   map[string]domain.Report
	retired map[string]struct{}
}

func newPendingReports() *pendingReports {
	return &pendingReports{
		items:   make(map[string]domain.Report),
		retired: make(map[string]struct{}),
	}
}

// Add inserts r unless it is already pending or retired.
func (p *pendingReports) Add(r domain.Report) bool {
	k := r.Key.String()
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.retired[k]; ok {
		return false
	}
	if _, ok := p.items[k]; ok {
		return false
	}
	p.items[k] = r
	return true
}

// Snapshot copies the pending reports, ordered by key.
func (p *pendingReports) Snapshot() []domain.Report {
	p.mu.Lock()
	out := make([]domain.Report, 0, len(p.items))
	for _, r := range p.items {
		out = append(out, r)
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// Retire removes the given report keys in one batch and remembers them.
func (p *pendingReports) Retire(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		delete(p.items, k)
		p.retired[k] = struct{}{}
	}
}

func (p *pendingReports) IsRetired(k string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.retired[k]
	return ok
}

func (p *pendingReports) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *pendingReports) RetiredLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.retired)
}

// referenceBuffer maps ReferenceKey.String() to the latest reference record.
// With a positive retention an entry expires that long after its last write.
type referenceBuffer struct {
	c *cache.Cache
}

func newReferenceBuffer(retention time.Duration) *referenceBuffer {
	if retention <= 0 {
		return &referenceBuffer{c: cache.New(cache.NoExpiration, 0)}
	}
	return &referenceBuffer{c: cache.New(retention, retention/2)}
}

func (b *referenceBuffer) Put(r domain.Reference) {
	b.c.Set(r.Key.String(), r, cache.DefaultExpiration)
}

func (b *referenceBuffer) Get(k domain.ReferenceKey) (domain.Reference, bool) {
	v, ok := b.c.Get(k.String())
	if !ok {
		return domain.Reference{}, false
	}
	return v.(domain.Reference), true
}

func (b *referenceBuffer) Len() int { return b.c.ItemCount() }
