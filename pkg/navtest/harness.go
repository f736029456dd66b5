package navtest

import (
	"context"
	"sync"
	"testing"

	"github.com/zenith-dev/zenith/pkg/history"
	"github.com/zenith-dev/zenith/pkg/router"
)

// Harness bundles a router with a recording mounter and an in-memory
// history stack, plus assertion helpers over all three.
type Harness struct {
	tb testing.TB

	// Router is the router under test.
	Router *router.Router

	// Mounter records every mount and teardown the router performs.
	Mounter *RecordingMounter

	// Bridge is the history bridge the router listens on.
	Bridge *history.Bridge

	// Backend is the in-memory stack behind the bridge. Use
	// Backend.Travel to simulate external history movement.
	Backend *history.MemoryBackend

	unsubscribe func()

	mu      sync.Mutex
	changes []router.Change
}

func (h *Harness) record(c router.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.changes = append(h.changes, c)
}

// Start starts the router, failing the test on error.
func (h *Harness) Start() {
	h.tb.Helper()
	if err := h.Router.Start(); err != nil {
		h.tb.Fatalf("navtest: Start: %v", err)
	}
}

// Navigate navigates and returns the router's error.
func (h *Harness) Navigate(path string, opts ...router.NavigateOption) error {
	return h.Router.Navigate(context.Background(), path, opts...)
}

// MustNavigate navigates and fails the test on error.
func (h *Harness) MustNavigate(path string, opts ...router.NavigateOption) {
	h.tb.Helper()
	if err := h.Navigate(path, opts...); err != nil {
		h.tb.Fatalf("navtest: Navigate(%q): %v", path, err)
	}
}

// Back moves one entry back in history.
func (h *Harness) Back() { h.Router.Back() }

// Forward moves one entry forward in history.
func (h *Harness) Forward() { h.Router.Forward() }

// Go moves by delta entries in history.
func (h *Harness) Go(delta int) { h.Router.Go(delta) }

// Changes returns a copy of every route change notified so far.
func (h *Harness) Changes() []router.Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]router.Change, len(h.changes))
	copy(out, h.changes)
	return out
}

// LastChange returns the most recent route change, if any.
func (h *Harness) LastChange() (router.Change, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.changes) == 0 {
		return router.Change{}, false
	}
	return h.changes[len(h.changes)-1], true
}

// AssertPath verifies the current route path.
func (h *Harness) AssertPath(want string) {
	h.tb.Helper()
	if got := h.Router.Current().Path; got != want {
		h.tb.Fatalf("current path = %q, want %q", got, want)
	}
}

// AssertParam verifies a parameter of the current route.
func (h *Harness) AssertParam(key, want string) {
	h.tb.Helper()
	got, ok := h.Router.Current().Params[key]
	if !ok {
		h.tb.Fatalf("param %q not set, params = %v", key, h.Router.Current().Params)
	}
	if got != want {
		h.tb.Fatalf("param %q = %q, want %q", key, got, want)
	}
}

// AssertMatched verifies that the current location resolved to a route.
func (h *Harness) AssertMatched() {
	h.tb.Helper()
	if !h.Router.Current().Matched() {
		h.tb.Fatalf("expected a matched route at %q", h.Router.Current().Path)
	}
}

// AssertUnmatched verifies that the current location resolved to no
// route.
func (h *Harness) AssertUnmatched() {
	h.tb.Helper()
	if h.Router.Current().Matched() {
		h.tb.Fatalf("expected no match at %q, matched %q", h.Router.Current().Path, h.Router.Current().Route.Path)
	}
}

// AssertMounted verifies the exact sequence of mounted artifacts.
func (h *Harness) AssertMounted(artifacts ...string) {
	h.tb.Helper()
	got := h.Mounter.Mounts()
	if len(got) != len(artifacts) {
		h.tb.Fatalf("mounts = %v, want %v", got, artifacts)
	}
	for i := range artifacts {
		if got[i] != artifacts[i] {
			h.tb.Fatalf("mounts = %v, want %v", got, artifacts)
		}
	}
}

// AssertTeardowns verifies how many mounted pages have been torn down.
func (h *Harness) AssertTeardowns(want int) {
	h.tb.Helper()
	if got := h.Mounter.Teardowns(); got != want {
		h.tb.Fatalf("teardowns = %d, want %d", got, want)
	}
}

// AssertHistory verifies the full history stack, oldest first.
func (h *Harness) AssertHistory(entries ...string) {
	h.tb.Helper()
	got := h.Backend.Entries()
	if len(got) != len(entries) {
		h.tb.Fatalf("history = %v, want %v", got, entries)
	}
	for i, want := range entries {
		if got[i] != want {
			h.tb.Fatalf("history = %v, want %v", got, entries)
		}
	}
}

// AssertPhase verifies the router's lifecycle phase.
func (h *Harness) AssertPhase(want router.Phase) {
	h.tb.Helper()
	if got := h.Router.Phase(); got != want {
		h.tb.Fatalf("phase = %v, want %v", got, want)
	}
}
