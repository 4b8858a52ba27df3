package events

import (
	"maps"
	"slices"
	"sync"
	"time"
)

type Kind string

const (
	EntryUpserted   Kind = "entry.upserted"
	EntryRemoved    Kind = "entry.removed"
	MonthCleared    Kind = "month.cleared"
	LedgerCleared   Kind = "ledger.cleared"
	LedgerImported  Kind = "ledger.imported"
	SettingsUpdated Kind = "settings.updated"
)

// Event describes a state change that observers may want to re-render for.
type Event struct {
	Kind     Kind      `json:"kind"`
	MonthKey string    `json:"monthKey,omitempty"`
	Date     string    `json:"date,omitempty"`
	At       time.Time `json:"at"`
}

// Bus fans events out to subscribers synchronously, in publish order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(Event)
	closed   bool
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Channel subscribes a buffered channel. Events are dropped rather than
// blocking the publisher when the buffer is full.
func (b *Bus) Channel(size int) (<-chan Event, func()) {
	ch := make(chan Event, size)
	var once sync.Once
	var chMu sync.Mutex
	closed := false

	unsubscribe := b.Subscribe(func(e Event) {
		chMu.Lock()
		defer chMu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	cleanup := func() {
		once.Do(func() {
			unsubscribe()
			chMu.Lock()
			closed = true
			close(ch)
			chMu.Unlock()
		})
	}
	return ch, cleanup
}

// Publish delivers e to every current subscriber. Handlers run on the
// caller's goroutine and must not publish recursively.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	ids := slices.Sorted(maps.Keys(b.handlers))
	handlers := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Close drops all subscribers; later subscriptions are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[int]func(Event))
}

