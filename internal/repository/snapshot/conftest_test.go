package snapshot

import (
	"context"
	"time"

	"github.com/kailas-cloud/rentdex/internal/db"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
)

type mockSource struct {
	items  []catalog.Item
	err    error
	calls  int
	during func() // runs inside All, after the items were read
}

func (m *mockSource) All(_ context.Context) ([]catalog.Item, error) {
	m.calls++
	items := m.items
	if m.during != nil {
		m.during()
	}
	return items, m.err
}

// mockCache implements the consumer interface for tests.
type mockCache struct {
	data   map[string][]byte
	getErr error
	setErr error
	delErr error
	ttl    time.Duration

	beforeSet func()
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockCache) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.beforeSet != nil {
		m.beforeSet()
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func (m *mockCache) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}
