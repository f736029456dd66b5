// Package events provides the synchronous pub/sub bus used for
// route-change notifications.
//
// The bus fans out each published value to every current subscriber, in
// subscription order, on the publishing goroutine. There is no queueing
// and no replay: a subscriber only sees values published while it is
// subscribed. A subscriber removed while a publish is in flight is not
// invoked for that publish unless it had already been visited.
package events

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Bus is a synchronous publish/subscribe channel for values of type T.
// The zero value is not usable; create one with New.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   []*subscription[T]
	logger *slog.Logger
}

// subscription is one registered callback. removed is guarded by the
// bus mutex so an unsubscribe that races a publish is seen before the
// callback fires.
type subscription[T any] struct {
	fn      func(T)
	removed bool
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		logger: slog.Default().With("component", "events"),
	}
}

// WithLogger sets the logger used when a subscriber panics and returns
// the bus for chaining.
func (b *Bus[T]) WithLogger(logger *slog.Logger) *Bus[T] {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Subscribe registers fn and returns its unsubscribe function. The
// unsubscribe function is idempotent; once it returns, fn will not be
// invoked for publishes it had not already been visited by.
func (b *Bus[T]) Subscribe(fn func(T)) func() {
	sub := &subscription[T]{fn: fn}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub.removed {
			return
		}
		sub.removed = true
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers v synchronously to every subscriber present when the
// publish started. The iteration order is the subscription order and is
// stable for the whole call even if subscribers are added or removed
// mid-publish; additions are not visited, removals are skipped unless
// already visited. A panicking subscriber is recovered and logged
// without affecting the rest of the fan-out.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	snapshot := make([]*subscription[T], len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.mu.Lock()
		skip := sub.removed
		b.mu.Unlock()
		if skip {
			continue
		}
		b.invoke(sub.fn, v)
	}
}

// invoke runs one subscriber with panic recovery.
func (b *Bus[T]) invoke(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	fn(v)
}

// Len returns the current number of subscribers. Useful for verifying
// that every caller unsubscribed.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
