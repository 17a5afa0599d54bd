package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
	"github.com/kailas-cloud/rentdex/internal/fuzzy"
)

// --- Mocks ---

// mockCatalog evaluates specs the way the SQL executor does.
type mockCatalog struct {
	items []catalog.Item
	err   error
	calls atomic.Int32
}

func (m *mockCatalog) Query(_ context.Context, spec filter.Spec) ([]catalog.Item, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	out := make([]catalog.Item, 0)
	for i := range m.items {
		if spec.Matches(&m.items[i]) && spec.MatchesText(&m.items[i]) {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

type mockSnapshots struct {
	items         []catalog.Item
	err           error
	invalidateErr error
	gate          chan struct{} // when set, Snapshot blocks until closed

	calls         atomic.Int32
	invalidations atomic.Int32
}

func (m *mockSnapshots) Snapshot(_ context.Context) ([]catalog.Item, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockSnapshots) Invalidate(_ context.Context) error {
	m.invalidations.Add(1)
	return m.invalidateErr
}

// poisonedIndex returns every item it was built from as a perfect match.
type poisonedIndex struct {
	items []catalog.Item
}

func (p *poisonedIndex) Search(_ string) []result.Hit {
	hits := make([]result.Hit, len(p.items))
	for i := range p.items {
		hits[i] = result.Hit{Item: p.items[i]}
	}
	return hits
}

func (p *poisonedIndex) Len() int { return len(p.items) }

func fuzzyBuilder() IndexBuilder {
	b := fuzzy.NewBuilder(fuzzy.Options{})
	return IndexBuilderFunc(func(items []catalog.Item) FuzzyIndex { return b.Build(items) })
}

func poisonedBuilder() IndexBuilder {
	return IndexBuilderFunc(func(items []catalog.Item) FuzzyIndex { return &poisonedIndex{items: items} })
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// --- Fixtures ---

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func fp(f float64) *float64 { return &f }

func tp(t time.Time) *time.Time { return &t }

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

// cameraCatalog is in store order (newest first).
func cameraCatalog() []catalog.Item {
	return []catalog.Item{
		{ID: "1", Title: "Canon EOS R5", DailyPrice: 50, Category: "cameras", Condition: catalog.ConditionLikeNew,
			City: "San Francisco", State: "CA", Rating: fp(4.8), CreatedAt: base.Add(3 * time.Hour)},
		{ID: "2", Title: "Canon Rebel", DailyPrice: 30, Category: "cameras", Condition: catalog.ConditionGood,
			City: "Oakland", State: "CA", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "3", Title: "Sony A7", DailyPrice: 60, Category: "cameras", Condition: catalog.ConditionGood,
			City: "Austin", State: "TX", Rating: fp(4.2), CreatedAt: base.Add(time.Hour)},
	}
}

type fixture struct {
	catalog   *mockCatalog
	snapshots *mockSnapshots
	clock     *fakeClock
	svc       *Service
}

func newFixture(items []catalog.Item, builder IndexBuilder, opts ...Option) *fixture {
	f := &fixture{
		catalog:   &mockCatalog{items: items},
		snapshots: &mockSnapshots{items: items},
		clock:     newFakeClock(),
	}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.svc = New(f.catalog, f.snapshots, builder, domain.DefaultSearchConfig(), opts...)
	return f
}

func ids(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
