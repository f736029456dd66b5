package navtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/zenith-dev/zenith/pkg/router"
)

// RecordingMounter records every mount in order and counts teardowns.
// Artifacts are recorded via fmt.Sprint, so string artifacts compare
// directly.
type RecordingMounter struct {
	mu        sync.Mutex
	mounts    []string
	teardowns int

	// OnMount, when set, runs before each mount is recorded. Returning
	// an error makes the mount fail, which is how mount failures are
	// injected into a test.
	OnMount func(container, artifact any) error
}

// Mount implements router.Mounter.
func (m *RecordingMounter) Mount(container, artifact any) (router.Teardown, error) {
	if m.OnMount != nil {
		if err := m.OnMount(container, artifact); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	m.mounts = append(m.mounts, fmt.Sprint(artifact))
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.teardowns++
		m.mu.Unlock()
	}, nil
}

// Mounts returns the recorded artifacts, oldest first.
func (m *RecordingMounter) Mounts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.mounts))
	copy(out, m.mounts)
	return out
}

// Teardowns returns how many mounted pages have been torn down.
func (m *RecordingMounter) Teardowns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teardowns
}

// StaticLoader returns a loader that immediately produces artifact.
func StaticLoader(artifact any) router.LoadFunc {
	return func(context.Context, router.Params) (any, error) {
		return artifact, nil
	}
}

// FailingLoader returns a loader that always fails with err.
func FailingLoader(err error) router.LoadFunc {
	return func(context.Context, router.Params) (any, error) {
		return nil, err
	}
}

// GatedLoader is a loader that blocks until released, for driving
// overlapping-navigation scenarios deterministically.
//
// Example:
//
//	gate := navtest.NewGatedLoader("slow-page")
//	h := navtest.NewHarness().
//	    WithRoute("/", "home").
//	    WithLoader("/slow", gate.Load).
//	    Build(t)
//	h.Start()
//
//	go h.Navigate("/slow")
//	<-gate.Started()          // the load is in flight
//	h.MustNavigate("/")       // overlap it
//	gate.Release()            // let the stale load finish
type GatedLoader struct {
	artifact any

	// Err, when set before Release, makes the load fail with it.
	Err error

	started     chan struct{}
	release     chan struct{}
	releaseOnce sync.Once
}

// NewGatedLoader creates a loader that will produce artifact once
// released.
func NewGatedLoader(artifact any) *GatedLoader {
	return &GatedLoader{
		artifact: artifact,
		started:  make(chan struct{}, 16),
		release:  make(chan struct{}),
	}
}

// Load implements router.LoadFunc. It signals Started, then blocks
// until Release is called or the context ends.
func (g *GatedLoader) Load(ctx context.Context, _ router.Params) (any, error) {
	select {
	case g.started <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return g.artifact, g.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Started receives one signal per load call that has entered Load.
func (g *GatedLoader) Started() <-chan struct{} {
	return g.started
}

// Release unblocks every pending and future load. Safe to call more
// than once.
func (g *GatedLoader) Release() {
	g.releaseOnce.Do(func() { close(g.release) })
}
