package events

import (
	"maps"
	"slices"
	"sync"
)

// listenerSet is the registration bookkeeping shared by the event types.
// L is the listener representation (a channel or a callback).
type listenerSet[T any, L any] struct {
	mu        sync.RWMutex
	listeners map[uint64]L
	nextID    uint64

	// remembered value for late listeners
	rememberLast bool
	last         T
	hasLast      bool
}

func newListenerSet[T any, L any](rememberLast bool) listenerSet[T, L] {
	return listenerSet[T, L]{
		listeners:    make(map[uint64]L),
		rememberLast: rememberLast,
	}
}

// add registers l and returns its deregistration func plus the value to
// replay to it, if any
func (s *listenerSet[T, L]) add(l L) (unregister func(), replay T, shouldReplay bool) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	replay, shouldReplay = s.last, s.rememberLast && s.hasLast
	s.mu.Unlock()

	var once sync.Once
	unregister = func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
	return unregister, replay, shouldReplay
}

// publish records value and returns the listeners to deliver it to.
// Delivery happens outside the lock so listeners may unregister themselves.
func (s *listenerSet[T, L]) publish(value T) []L {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rememberLast {
		s.last = value
		s.hasLast = true
	}
	return slices.Collect(maps.Values(s.listeners))
}

func (s *listenerSet[T, L]) lastValue() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.rememberLast || !s.hasLast {
		var zero T
		return zero, false
	}
	return s.last, true
}

func (s *listenerSet[T, L]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}
