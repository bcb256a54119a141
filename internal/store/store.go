// Package store provides observable value cells: a writable Store and a
// Derived view that recomputes whenever its source changes.
package store

import "sync"

// Readable is the read side shared by Store and Derived.
type Readable[T any] interface {
	Get() T
	Subscribe(fn func(T)) (unsubscribe func())
}

// Store holds a single value and notifies subscribers after every mutation.
// Callbacks run synchronously on the mutating goroutine, outside the value
// lock, in subscription order. A callback must not mutate the same store.
type Store[T any] struct {
	mu     sync.Mutex
	notify sync.Mutex
	value  T
	subs   []*subscriber[T]
}

type subscriber[T any] struct {
	fn func(T)
}

// New returns a Store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Store[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the current value atomically and notifies subscribers
// with the result. fn must be pure.
func (s *Store[T]) Update(fn func(T) T) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.value = fn(s.value)
	v := s.value
	subs := make([]*subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn and calls it immediately with the current value.
// The returned func removes the subscription; calling it twice is harmless.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.notify.Lock()
	defer s.notify.Unlock()

	sub := &subscriber[T]{fn: fn}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	v := s.value
	s.mu.Unlock()

	fn(v)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, x := range s.subs {
			if x == sub {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Len reports the number of active subscribers.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
