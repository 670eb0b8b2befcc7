// Package syncx provides extended synchronization primitives
package syncx

import "sync"

// Guard wraps a value with a mutex. Used for snapshots written by the tick
// loop and read by the API server and broadcasters. T should be a value
// type or treated as immutable once stored.
type Guard[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewGuard creates a guarded value.
func NewGuard[T any](initial T) *Guard[T] {
	return &Guard[T]{v: initial}
}

// Get returns a copy of the value.
func (g *Guard[T]) Get() T {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.v
}

// Set replaces the value.
func (g *Guard[T]) Set(v T) {
	g.mu.Lock()
	g.v = v
	g.mu.Unlock()
}

// Update mutates the value under the write lock.
func (g *Guard[T]) Update(fn func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.v)
}
