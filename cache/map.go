package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Loader fetches the value for a key on a miss or after expiry.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Map is a concurrency safe set of Expiring holders sharing one duration.
type Map[K comparable, V any] struct {
	duration time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	items map[K]Expiring[V]
	// loads collapses concurrent loads of the same key.
	loads map[K]*pendingLoad[V]
}

type pendingLoad[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func NewMap[K comparable, V any](opts ...Option) *Map[K, V] {
	o := options{duration: DefaultDuration, now: time.Now}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	return &Map[K, V]{
		duration: o.duration,
		now:      o.now,
		items:    map[K]Expiring[V]{},
		loads:    map[K]*pendingLoad[V]{},
	}
}

// Get returns the value only while it is still valid.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	m.mu.RLock()
	holder, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || holder.IsInvalid() {
		return zero, false
	}
	return holder.Value(), true
}

// Peek returns the holder in whatever state it is in.
func (m *Map[K, V]) Peek(key K) (Expiring[V], bool) {
	if m == nil {
		return Expiring[V]{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	holder, ok := m.items[key]
	return holder, ok
}

func (m *Map[K, V]) Set(key K, value V) Expiring[V] {
	if m == nil {
		return Expiring[V]{}
	}
	holder := New(value, WithDuration(m.duration), WithClock(m.now))
	m.mu.Lock()
	m.items[key] = holder
	m.mu.Unlock()
	return holder
}

// GetOrLoad serves a valid value or calls load and stores its result.
// Failed loads are not cached. Concurrent callers for the same key share one
// load; a waiter whose own context is still live retries when the shared
// load ended with the loading caller's context error.
func (m *Map[K, V]) GetOrLoad(ctx context.Context, key K, load Loader[K, V]) (V, error) {
	var zero V
	if m == nil {
		return zero, errors.New("cache: map is nil")
	}
	if load == nil {
		return zero, errors.New("cache: loader is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		if value, ok := m.Get(key); ok {
			return value, nil
		}

		m.mu.Lock()
		if holder, ok := m.items[key]; ok && holder.IsValid() {
			m.mu.Unlock()
			return holder.Value(), nil
		}
		if pending, ok := m.loads[key]; ok {
			m.mu.Unlock()
			select {
			case <-pending.done:
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			if isContextError(pending.err) && ctx.Err() == nil {
				continue
			}
			return pending.value, pending.err
		}
		pending := &pendingLoad[V]{done: make(chan struct{})}
		m.loads[key] = pending
		m.mu.Unlock()

		return m.runLoad(ctx, key, pending, load)
	}
}

// runLoad always releases the pending entry, even when load panics. The
// panic is reported to waiters as an error and keeps unwinding the caller.
func (m *Map[K, V]) runLoad(ctx context.Context, key K, pending *pendingLoad[V], load Loader[K, V]) (V, error) {
	completed := false
	defer func() {
		if !completed {
			pending.err = fmt.Errorf("cache: loader panicked for key %v", key)
		}
		m.mu.Lock()
		if pending.err == nil {
			m.items[key] = New(pending.value, WithDuration(m.duration), WithClock(m.now))
		}
		delete(m.loads, key)
		m.mu.Unlock()
		close(pending.done)
	}()

	pending.value, pending.err = load(ctx, key)
	completed = true
	return pending.value, pending.err
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (m *Map[K, V]) Delete(key K) {
	if m == nil {
		return
	}
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Purge drops invalid holders and returns how many were removed.
func (m *Map[K, V]) Purge() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, holder := range m.items {
		if holder.IsInvalid() {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
