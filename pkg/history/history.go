// Package history wraps the platform's session-history primitives
// behind a small interface the navigation machine can drive.
//
// A Backend is the raw platform surface: push/replace an entry, read
// the current path, travel the stack, and bind the single back/forward
// hook. Bridge layers the subscriber contract on top: any number of
// listeners, each notified synchronously on every back/forward event,
// with the backend hook attached lazily on the first listener and
// released when the last one unsubscribes. MemoryBackend is the
// in-process implementation used by servers and tests; browser-backed
// implementations live with the host embedding.
package history

import "sync"

// Backend is the platform history primitive.
//
// Bind attaches the back/forward hook; the returned release detaches
// it. The bridge guarantees at most one active bind per backend, so
// implementations may treat a second concurrent bind as a programming
// error.
type Backend interface {
	// Push appends a new entry with the given path and makes it
	// current, discarding any forward entries.
	Push(path string)

	// Replace swaps the current entry's path in place.
	Replace(path string)

	// Current returns the current entry's path.
	Current() string

	// Travel moves the current entry by delta (negative is back).
	// Out-of-range travel is ignored. In-range travel invokes the
	// bound hook, if any, with the freshly current path.
	Travel(delta int)

	// Bind attaches the back/forward hook.
	Bind(onChange func(path string)) (release func())
}

// History is the surface the navigation machine consumes: entry
// writes, the current path, travel, and back/forward subscription.
type History interface {
	Push(path string)
	Replace(path string)
	Current() string
	Go(delta int)
	Back()
	Forward()

	// Listen registers fn for back/forward events and returns its
	// unlisten function. Callbacks fire synchronously, in registration
	// order, once per event, receiving the freshly current path.
	Listen(fn func(path string)) (unlisten func())
}

// Reloader is implemented by histories that can perform a full-page
// navigation, leaving the SPA session entirely. The router uses it as
// the hard fallback for failed navigations.
type Reloader interface {
	ForceReload(path string)
}

// Bridge implements History over a Backend, multiplexing any number of
// listeners onto the backend's single back/forward hook. The hook is
// attached on the first Listen and released when the last listener
// unsubscribes, so an idle bridge holds no platform resources.
type Bridge struct {
	backend Backend

	mu        sync.Mutex
	listeners []*listener
	release   func()
}

type listener struct {
	fn      func(string)
	removed bool
}

// NewBridge creates a bridge over backend.
func NewBridge(backend Backend) *Bridge {
	return &Bridge{backend: backend}
}

// Push appends a new history entry. The stored path round-trips through
// Current exactly as given.
func (b *Bridge) Push(path string) {
	b.backend.Push(path)
}

// Replace swaps the current entry's path.
func (b *Bridge) Replace(path string) {
	b.backend.Replace(path)
}

// Current returns the current entry's path.
func (b *Bridge) Current() string {
	return b.backend.Current()
}

// Go travels the stack by delta. The resulting back/forward event, if
// any, reaches listeners synchronously from the backend.
func (b *Bridge) Go(delta int) {
	b.backend.Travel(delta)
}

// Back travels one entry back.
func (b *Bridge) Back() {
	b.backend.Travel(-1)
}

// Forward travels one entry forward.
func (b *Bridge) Forward() {
	b.backend.Travel(1)
}

// ForceReload delegates to the backend when it supports full-page
// reloads; otherwise it is a no-op.
func (b *Bridge) ForceReload(path string) {
	if r, ok := b.backend.(Reloader); ok {
		r.ForceReload(path)
	}
}

// Listen registers fn for back/forward events. The first listener
// attaches the shared backend hook; the returned unlisten function is
// idempotent and releases the hook when it removes the last listener.
func (b *Bridge) Listen(fn func(path string)) (unlisten func()) {
	l := &listener{fn: fn}

	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	if len(b.listeners) == 1 {
		b.release = b.backend.Bind(b.dispatch)
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if l.removed {
			return
		}
		l.removed = true
		for i, cand := range b.listeners {
			if cand == l {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				break
			}
		}
		if len(b.listeners) == 0 && b.release != nil {
			b.release()
			b.release = nil
		}
	}
}

// Listeners returns the current listener count. Useful for verifying
// that every caller unsubscribed.
func (b *Bridge) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// dispatch fans one back/forward event out to the listeners registered
// when the event arrived, in registration order.
func (b *Bridge) dispatch(path string) {
	b.mu.Lock()
	snapshot := make([]*listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		b.mu.Lock()
		skip := l.removed
		b.mu.Unlock()
		if skip {
			continue
		}
		l.fn(path)
	}
}
