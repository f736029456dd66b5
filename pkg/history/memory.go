package history

import "sync"

// MemoryBackend is an in-process history Backend: an entry stack and an
// index, with the back/forward hook invoked synchronously from Travel.
// It also records ForceReload calls so the router's hard-fallback
// policy is observable in tests and server hosts.
type MemoryBackend struct {
	mu       sync.Mutex
	entries  []string
	index    int
	onChange func(string)
	binds    int
	reloads  []string
}

// NewMemoryBackend creates a backend whose stack holds the given
// initial entries, current at the last one. With no arguments the
// stack starts at "/".
func NewMemoryBackend(initial ...string) *MemoryBackend {
	if len(initial) == 0 {
		initial = []string{"/"}
	}
	entries := make([]string, len(initial))
	copy(entries, initial)
	return &MemoryBackend{
		entries: entries,
		index:   len(entries) - 1,
	}
}

// Push appends path after the current entry, dropping any forward
// entries, and makes it current. The path is stored verbatim.
func (m *MemoryBackend) Push(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], path)
	m.index = len(m.entries) - 1
}

// Replace swaps the current entry's path verbatim.
func (m *MemoryBackend) Replace(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = path
}

// Current returns the current entry's path.
func (m *MemoryBackend) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Travel moves the current entry by delta and fires the bound hook with
// the new current path. Travel that would leave the stack, and zero
// delta, are ignored without firing.
func (m *MemoryBackend) Travel(delta int) {
	if delta == 0 {
		return
	}

	m.mu.Lock()
	next := m.index + delta
	if next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return
	}
	m.index = next
	path := m.entries[m.index]
	onChange := m.onChange
	m.mu.Unlock()

	// Fire outside the lock; the hook may read Current or push.
	if onChange != nil {
		onChange(path)
	}
}

// Bind attaches the back/forward hook, replacing any previous one, and
// returns its release function. BindCount reports how many times this
// has happened, which is how the ref-counting contract is verified.
func (m *MemoryBackend) Bind(onChange func(path string)) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binds++
	m.onChange = onChange
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.onChange = nil
	}
}

// BindCount returns the total number of Bind calls.
func (m *MemoryBackend) BindCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binds
}

// Bound reports whether a hook is currently attached.
func (m *MemoryBackend) Bound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onChange != nil
}

// ForceReload simulates a full-page navigation: the path is pushed as a
// fresh entry and recorded. The back/forward hook does not fire; a real
// page load replaces the whole browsing context.
func (m *MemoryBackend) ForceReload(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], path)
	m.index = len(m.entries) - 1
	m.reloads = append(m.reloads, path)
}

// Reloads returns the paths passed to ForceReload, oldest first.
func (m *MemoryBackend) Reloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.reloads))
	copy(out, m.reloads)
	return out
}

// Len returns the entry count.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Entries returns a copy of the stack, oldest first.
func (m *MemoryBackend) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// NewMemory is shorthand for a bridge over a fresh memory backend,
// returning both so tests can drive travel and inspect binds.
func NewMemory(initial ...string) (*Bridge, *MemoryBackend) {
	backend := NewMemoryBackend(initial...)
	return NewBridge(backend), backend
}
