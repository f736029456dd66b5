package router

import (
	"context"
	"runtime/debug"
	"sync"
)

// PageRef tracks the load state of one route's page. A ref starts in
// one of two variants: unloaded, holding only the loader, or loaded,
// holding the artifact. The only transition is unloaded to loaded; it
// happens on the first successful Load, whether that load came from a
// navigation or a prefetch, and is never reversed.
type PageRef struct {
	mu       sync.Mutex
	loader   LoadFunc
	artifact any
	loaded   bool
}

// NewUnloaded returns a ref that will call loader on first Load.
func NewUnloaded(loader LoadFunc) *PageRef {
	return &PageRef{loader: loader}
}

// NewLoaded returns a ref that is born loaded with artifact.
func NewLoaded(artifact any) *PageRef {
	return &PageRef{artifact: artifact, loaded: true}
}

// Loaded reports whether the artifact is available without loading.
func (p *PageRef) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Artifact returns the loaded artifact, if any.
func (p *PageRef) Artifact() (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.artifact, p.loaded
}

// Load returns the artifact, invoking the loader if it has not been
// produced yet. Concurrent Loads may each invoke the loader, but only
// the first completion is kept; every caller observes the kept
// artifact. A loader panic is captured and returned as a *PanicError.
// Failed loads do not transition the ref, so a later Load retries.
func (p *PageRef) Load(ctx context.Context, params Params) (any, error) {
	p.mu.Lock()
	if p.loaded {
		artifact := p.artifact
		p.mu.Unlock()
		return artifact, nil
	}
	loader := p.loader
	p.mu.Unlock()

	artifact, err := runLoader(ctx, loader, params)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if !p.loaded {
		p.artifact = artifact
		p.loaded = true
	}
	artifact = p.artifact
	p.mu.Unlock()
	return artifact, nil
}

// runLoader invokes loader with panic capture.
func runLoader(ctx context.Context, loader LoadFunc, params Params) (artifact any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return loader(ctx, params)
}
