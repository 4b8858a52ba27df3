package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL bounds how long a computed summary is served before it is recomputed.
const DefaultTTL = 5 * time.Minute

// Cache stores computed summaries keyed by query. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type item struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache with a fixed TTL.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]item
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, items: make(map[string]item), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(it.expiresAt) {
		delete(m.items, key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	// Drop anything already expired so stale generations do not pile up.
	for k, it := range m.items {
		if !now.Before(it.expiresAt) {
			delete(m.items, k)
		}
	}
	m.items[key] = item{value: value, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
