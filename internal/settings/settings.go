// Package settings provides a small injected key-value store for engine
// state plus typed change notifications. It replaces implicitly observable
// global settings with an explicit interface so persistence and reactivity
// stay decoupled.
package settings

import (
	"context"
	"sync"
)

// Well-known keys.
const (
	KeyLastSyncDate  = "last_sync_date"
	KeyFirstSyncDone = "first_sync_done"
	KeySyncState     = "sync_state"
)

// Store persists string values by key. Get returns ok=false when the key has
// never been set.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Change describes one settings mutation.
type Change struct {
	Key   string
	Value string
}

// Watcher fans settings changes out to subscribers. Slow subscribers drop
// notifications rather than block the writer.
type Watcher struct {
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

// NewWatcher constructs a Watcher.
func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[int]chan Change)}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the subscription.
func (w *Watcher) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	w.mu.Lock()
	id := w.next
	w.next++
	w.subs[id] = ch
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if sub, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(sub)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

// Notify delivers a change to all subscribers without blocking.
func (w *Watcher) Notify(key, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- Change{Key: key, Value: value}:
		default:
		}
	}
}

// Watched decorates a Store so every successful Set produces a notification.
type Watched struct {
	store   Store
	watcher *Watcher
}

// NewWatched wraps store with change notifications on watcher.
func NewWatched(store Store, watcher *Watcher) *Watched {
	return &Watched{store: store, watcher: watcher}
}

// Get implements Store.
func (s *Watched) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, key)
}

// Set implements Store.
func (s *Watched) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return err
	}
	s.watcher.Notify(key, value)
	return nil
}

// Memory is an in-process Store for tests and defaults.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
