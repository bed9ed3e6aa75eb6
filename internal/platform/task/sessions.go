package task

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSessionCapacity bounds a Sessions store when no capacity is given.
const DefaultSessionCapacity = 10000

// Sessions holds one value per session id. Only writers create entries, and
// once the store is full the least recently used session is evicted.
type Sessions[V any] struct {
	mu    sync.Mutex
	cache *lru.Cache[string, V]
	newV  func() V
}

// NewSessions returns a store holding at most capacity sessions. newV builds
// the value of a session on first write.
func NewSessions[V any](capacity int, newV func() V) *Sessions[V] {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, V](capacity)
	return &Sessions[V]{cache: cache, newV: newV}
}

// Get returns the session's value without creating one.
func (s *Sessions[V]) Get(id string) (V, bool) {
	return s.cache.Get(id)
}

// Obtain returns the session's value, creating it when absent.
func (s *Sessions[V]) Obtain(id string) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(id); ok {
		return v
	}
	v := s.newV()
	s.cache.Add(id, v)
	return v
}

// Remove discards the session.
func (s *Sessions[V]) Remove(id string) {
	s.cache.Remove(id)
}

// Len is the number of sessions held.
func (s *Sessions[V]) Len() int {
	return s.cache.Len()
}
